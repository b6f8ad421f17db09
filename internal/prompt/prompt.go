// Package prompt asks the user for input on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrAborted is returned when input ends or the user cancels before an
// answer was given.
var ErrAborted = errors.New("prompt aborted")

// Question describes one free-text prompt.
type Question struct {
	Label    string
	Default  string
	Validate func(string) error
}

// answer applies the default to an empty reply. Plain answers are trimmed;
// secrets are kept as typed.
func (q Question) answer(raw string, secret bool) string {
	if !secret {
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return q.Default
	}
	return raw
}

func (q Question) check(raw string, secret bool) error {
	if q.Validate == nil {
		return nil
	}
	if err := q.Validate(q.answer(raw, secret)); err != nil {
		return errors.New(Sentence(err.Error()))
	}
	return nil
}

// Choice is one option of a selection prompt.
type Choice struct {
	Label string
	Value string
}

// Prompter collects answers from the user.
type Prompter interface {
	// Ask reads a line of text, re-asking until Validate accepts it.
	Ask(q Question) (string, error)
	// AskSecret reads a line of text without echoing it when possible.
	// The answer is not trimmed.
	AskSecret(q Question) (string, error)
	// Confirm asks a yes/no question.
	Confirm(label string, def bool) (bool, error)
	// Choose asks the user to pick one of choices and returns its Value.
	Choose(label string, choices []Choice) (string, error)
}

// Terminal prompts with huh forms. On an interactive terminal the fields
// are drawn inline; otherwise huh's accessible mode reads plain lines.
type Terminal struct {
	raw   io.Reader
	lines *lineReader
	out   io.Writer
	tty   bool
}

// NewTerminal returns a prompter reading from in and drawing on out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		raw:   in,
		lines: newLineReader(in),
		out:   out,
	}
	if f, ok := in.(*os.File); ok {
		t.tty = term.IsTerminal(int(f.Fd()))
	}
	return t
}

// Ask implements Prompter.
func (t *Terminal) Ask(q Question) (string, error) {
	var raw string
	field := huh.NewInput().
		Title(q.Label).
		Placeholder(q.Default).
		Value(&raw).
		Validate(func(s string) error { return q.check(s, false) })

	if err := t.run(field); err != nil {
		return "", err
	}
	if !t.tty && t.lines.eof && q.check(raw, false) != nil {
		return "", ErrAborted
	}
	return q.answer(raw, false), nil
}

// AskSecret implements Prompter.
func (t *Terminal) AskSecret(q Question) (string, error) {
	if !t.tty {
		return t.askPiped(q)
	}

	var raw string
	field := huh.NewInput().
		Title(q.Label).
		EchoMode(huh.EchoModePassword).
		Value(&raw).
		Validate(func(s string) error { return q.check(s, true) })

	if err := t.run(field); err != nil {
		return "", err
	}
	return q.answer(raw, true), nil
}

// askPiped reads a secret from non-interactive input verbatim. huh's
// accessible prompt trims its input, which would alter passwords.
func (t *Terminal) askPiped(q Question) (string, error) {
	for {
		fmt.Fprintf(t.out, "%s\n> ", q.Label)
		raw, err := t.lines.readLine()
		if err != nil {
			fmt.Fprintln(t.out)
			return "", err
		}
		if err := q.check(raw, true); err != nil {
			fmt.Fprintln(t.out, err)
			continue
		}
		return q.answer(raw, true), nil
	}
}

// Confirm implements Prompter.
func (t *Terminal) Confirm(label string, def bool) (bool, error) {
	answer := def
	field := huh.NewConfirm().
		Title(label).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)

	if err := t.run(field); err != nil {
		return false, err
	}
	return answer, nil
}

// Choose implements Prompter.
func (t *Terminal) Choose(label string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no choices for %q", label)
	}

	options := make([]huh.Option[string], 0, len(choices))
	for _, c := range choices {
		options = append(options, huh.NewOption(c.Label, c.Value))
	}
	value := choices[0].Value
	field := huh.NewSelect[string]().
		Title(label).
		Options(options...).
		Value(&value)

	if err := t.run(field); err != nil {
		return "", err
	}
	return value, nil
}

func (t *Terminal) run(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithShowHelp(false).
		WithOutput(t.out)
	if t.tty {
		form = form.WithInput(t.raw)
	} else {
		t.lines.reset()
		form = form.WithAccessible(true).WithInput(t.lines)
	}

	err := form.Run()
	switch {
	case errors.Is(err, huh.ErrUserAborted):
		return ErrAborted
	case err != nil:
		return fmt.Errorf("prompt: %w", err)
	case !t.tty && t.lines.exhausted():
		return ErrAborted
	}
	return nil
}

func parseYesNo(answer string, def bool) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return def, true
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}

// matchChoice accepts a 1-based index, a value or a label. Empty input picks
// the first choice.
func matchChoice(answer string, choices []Choice) (Choice, bool) {
	if answer == "" {
		return choices[0], true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], true
		}
		return Choice{}, false
	}
	for _, c := range choices {
		if strings.EqualFold(answer, c.Value) || strings.EqualFold(answer, c.Label) {
			return c, true
		}
	}
	return Choice{}, false
}

// Sentence upper-cases the first letter of msg for display.
func Sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
