package setup

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/auth"
	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/forms"
	"github.com/riff-tech/code-checkout-cli/internal/project"
	"github.com/riff-tech/code-checkout-cli/internal/retry"
)

// Authenticator registers new publisher accounts and signs in existing ones.
type Authenticator struct {
	deps   Deps
	logger zerolog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(deps Deps) *Authenticator {
	return &Authenticator{
		deps:   deps,
		logger: deps.Logger.With().Str("component", "authenticator").Logger(),
	}
}

// Authenticate signs in with username when it is known. Otherwise it asks
// whether the user already has an account and either signs in or registers.
func (a *Authenticator) Authenticate(ctx context.Context, username string) (config.Session, error) {
	if username == "" {
		hasAccount, err := a.deps.Prompter.Confirm("Do you already have a Code Checkout account?", false)
		if err != nil {
			return config.Session{}, err
		}
		if !hasAccount {
			return a.Register(ctx)
		}
	}

	creds, err := forms.Credentials(a.deps.Prompter, username)
	if err != nil {
		return config.Session{}, err
	}
	return a.SignIn(ctx, creds.Username, creds.Password)
}

// Register creates an account, confirms it with the emailed code and signs
// in. The returned patch holds the new credentials.
func (a *Authenticator) Register(ctx context.Context) (config.Session, error) {
	out := a.deps.Printer

	req, err := forms.Registration(a.deps.Prompter, project.DefaultPublisher(a.deps.Dir))
	if err != nil {
		return config.Session{}, err
	}

	out.Line("Creating your account...")
	if err := a.deps.API.RegisterUser(ctx, req); err != nil {
		return config.Session{}, err
	}
	out.Success("Account created! Check your email for a confirmation code.")

	changed, err := project.EnsurePublisher(a.deps.Dir, req.Publisher)
	if err != nil {
		a.logger.Warn().Err(err).Msg("could not record publisher in package.json")
	} else if changed {
		out.Line("Added publisher %q to package.json", req.Publisher)
	}

	if err := a.confirm(ctx, req.Username); err != nil {
		return config.Session{}, err
	}

	return a.SignIn(ctx, req.Username, req.Password)
}

func (a *Authenticator) confirm(ctx context.Context, username string) error {
	out := a.deps.Printer

	err := retry.Do(ctx, MaxConfirmationAttempts,
		func(attempt uint) error {
			code, err := forms.ConfirmationCode(a.deps.Prompter)
			if err != nil {
				return retry.Permanent(err)
			}
			out.Line("Confirming your account...")
			_, err = a.deps.API.ConfirmUser(ctx, api.ConfirmationRequest{
				Username:         username,
				ConfirmationCode: code,
			})
			return err
		},
		retry.OnFailure(func(attempt, remaining uint, err error) {
			a.logger.Debug().Err(err).Uint("attempt", attempt).Msg("confirmation rejected")
			out.Failure("Invalid confirmation code. %d attempts remaining.", remaining)
		}),
	)
	if errors.Is(err, retry.ErrExhausted) {
		a.logger.Debug().Err(err).Msg("confirmation attempts exhausted")
		return ErrConfirmationAttemptsExhausted
	}
	return err
}

// SignIn exchanges credentials for an identity token and returns the
// session patch holding it.
func (a *Authenticator) SignIn(ctx context.Context, username, password string) (config.Session, error) {
	a.deps.Printer.Line("Logging in...")

	resp, err := a.deps.API.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return config.Session{}, err
	}

	publisherID, err := auth.PublisherIDFromToken(resp.Tokens.IDToken)
	if err != nil {
		return config.Session{}, fmt.Errorf("read identity token: %w", err)
	}

	a.logger.Debug().Str("publisher_id", publisherID).Msg("signed in")

	return config.Session{
		PublisherID: publisherID,
		AuthToken:   resp.Tokens.IDToken,
		Username:    username,
	}, nil
}
