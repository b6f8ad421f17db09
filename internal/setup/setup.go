// Package setup implements the guided project setup and the building blocks
// it shares with the individual commands.
package setup

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/browser"
	"github.com/riff-tech/code-checkout-cli/internal/project"
	"github.com/riff-tech/code-checkout-cli/internal/prompt"
	"github.com/riff-tech/code-checkout-cli/internal/ui"
)

var (
	// ErrSessionNotPersisted is returned when a saved session does not read back.
	ErrSessionNotPersisted = errors.New("Failed to save authentication data. Please check file permissions.")

	// ErrPaymentOnboardingIncomplete is returned when the user has not finished
	// payment onboarding.
	ErrPaymentOnboardingIncomplete = errors.New("Stripe onboarding is not complete. Finish onboarding in your browser, then run this command again.")

	// ErrConfirmationAttemptsExhausted is returned after the last rejected
	// confirmation code.
	ErrConfirmationAttemptsExhausted = errors.New("Maximum confirmation attempts reached. Please start over and try again.")
)

// MaxConfirmationAttempts is how many confirmation codes a new account may try.
const MaxConfirmationAttempts = 3

// API is the subset of the gateway client used during setup.
type API interface {
	RegisterUser(ctx context.Context, req api.RegistrationRequest) error
	ConfirmUser(ctx context.Context, req api.ConfirmationRequest) (*api.ConfirmationResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error)
	PaymentOnboardingURL(ctx context.Context, publisherID, returnURL string) (string, error)
	CreateSoftware(ctx context.Context, publisherID string, req api.CreateSoftwareRequest) (*api.Software, error)
	CreatePricing(ctx context.Context, publisherID, softwareID string, req api.PricingRequest) error
}

// Deps holds the collaborators shared by every setup step.
type Deps struct {
	API      API
	Prompter prompt.Prompter
	Printer  *ui.Printer
	Browser  browser.Opener
	Runner   project.ScriptRunner
	Logger   zerolog.Logger

	// Dir is the project directory holding package.json.
	Dir string
	// ReturnURL is where payment onboarding sends the user when done.
	ReturnURL string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
