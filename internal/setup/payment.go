package setup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/riff-tech/code-checkout-cli/internal/config"
)

// PaymentLinker walks the publisher through Stripe onboarding.
type PaymentLinker struct {
	deps   Deps
	logger zerolog.Logger
}

// NewPaymentLinker creates a PaymentLinker.
func NewPaymentLinker(deps Deps) *PaymentLinker {
	return &PaymentLinker{
		deps:   deps,
		logger: deps.Logger.With().Str("component", "payment_linker").Logger(),
	}
}

// Link fetches an onboarding URL for the session's publisher, offers to open
// it, and waits for the user to confirm onboarding is done. With
// offerBrowser false the URL is only printed.
func (l *PaymentLinker) Link(ctx context.Context, sess config.Session, offerBrowser bool) (config.Session, error) {
	out := l.deps.Printer

	out.Line("Generating Stripe onboarding link...")
	onboardingURL, err := l.deps.API.PaymentOnboardingURL(ctx, sess.PublisherID, l.deps.ReturnURL)
	if err != nil {
		return config.Session{}, err
	}

	openIt := false
	if offerBrowser {
		openIt, err = l.deps.Prompter.Confirm("Open Stripe onboarding in your browser?", true)
		if err != nil {
			return config.Session{}, err
		}
	}

	if openIt {
		out.Success("Opening Stripe onboarding in your default browser...")
		if err := l.deps.Browser.Open(ctx, onboardingURL); err != nil {
			l.logger.Warn().Err(err).Msg("could not open browser")
			out.Line("Could not open a browser. Visit this URL to continue:")
			out.Line("  %s", onboardingURL)
		}
	} else {
		out.Line("Complete Stripe onboarding at:")
		out.Line("  %s", onboardingURL)
	}

	done, err := l.deps.Prompter.Confirm("Have you completed the Stripe onboarding process?", false)
	if err != nil {
		return config.Session{}, err
	}
	if !done {
		return config.Session{}, ErrPaymentOnboardingIncomplete
	}

	out.Success("Stripe account linked!")
	return config.Session{PaymentLinked: config.Bool(true)}, nil
}
