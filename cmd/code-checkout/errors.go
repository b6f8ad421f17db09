package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/prompt"
	"github.com/riff-tech/code-checkout-cli/internal/ui"
)

const supportHint = "Try again or contact support if the problem persists."

// preconditionError is an unmet requirement together with the command that
// satisfies it.
type preconditionError struct {
	msg  string
	next string
}

func (e *preconditionError) Error() string {
	return e.msg + "\nRun: code-checkout " + e.next
}

// failureError is an operation that was attempted and failed.
type failureError struct {
	msg string
	err error
}

func (e *failureError) Error() string {
	return e.msg + "\n" + supportHint
}

func (e *failureError) Unwrap() error {
	return e.err
}

// failed wraps err as "Failed to <action>: <reason>". Precondition errors,
// flag errors and aborted prompts are returned as they are.
func failed(action string, err error) error {
	return failedWith("Failed to "+action, err)
}

func failedWith(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var (
		pe *preconditionError
		fe *failureError
		ie *invalidInputError
	)
	if errors.As(err, &pe) || errors.As(err, &fe) || errors.As(err, &ie) || errors.Is(err, prompt.ErrAborted) {
		return err
	}
	return &failureError{msg: fmt.Sprintf("%s: %v", prefix, err), err: err}
}

// invalidInputError is a flag value that failed validation.
type invalidInputError struct {
	flag string
	err  error
}

func (e *invalidInputError) Error() string {
	return fmt.Sprintf("Invalid --%s: %v", e.flag, e.err)
}

func (e *invalidInputError) Unwrap() error {
	return e.err
}

func invalidFlag(flag string, err error) error {
	return &invalidInputError{flag: flag, err: err}
}

func (a *app) requireLogin(action string) (*config.Session, error) {
	sess, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if !sess.IsAuthenticated() {
		return nil, &preconditionError{
			msg:  fmt.Sprintf("You must be logged in to %s.", action),
			next: "login",
		}
	}
	return sess, nil
}

func (a *app) requireSoftware(action string) (*config.Session, error) {
	sess, err := a.requireLogin(action)
	if err != nil {
		return nil, err
	}
	if !sess.HasSoftware() {
		return nil, &preconditionError{
			msg:  "You must create software first.",
			next: "create-software",
		}
	}
	return sess, nil
}

func printError(w io.Writer, err error) {
	p := ui.NewPrinter(w)
	if errors.Is(err, prompt.ErrAborted) {
		p.Failure("Aborted.")
		return
	}
	p.Failure("%s", prompt.Sentence(err.Error()))
}
