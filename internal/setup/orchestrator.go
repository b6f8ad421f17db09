package setup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/forms"
)

// Step identifies one stage of the guided setup.
type Step int

const (
	StepAuthentication Step = iota
	StepPaymentLink
	StepSoftware
	StepPricing
	StepProjectInit
)

func (s Step) String() string {
	switch s {
	case StepAuthentication:
		return "authentication"
	case StepPaymentLink:
		return "payment link"
	case StepSoftware:
		return "software registration"
	case StepPricing:
		return "pricing"
	case StepProjectInit:
		return "project initialization"
	default:
		return fmt.Sprintf("step %d", int(s))
	}
}

// StepError reports the step at which setup stopped.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("setup failed at %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// step is one stage of the wizard. skip reports that the stage's goal
// already holds; run returns the session fields to persist; verify checks
// the persisted session afterwards.
type step struct {
	id     Step
	title  string
	skip   func(config.Session) bool
	run    func(context.Context, config.Session) (config.Session, error)
	verify func(config.Session) error
}

// Orchestrator runs the guided setup. Every step re-reads the session, so an
// interrupted run resumes where it stopped.
type Orchestrator struct {
	store  config.SessionStore
	deps   Deps
	steps  []step
	logger zerolog.Logger
}

// NewOrchestrator creates an Orchestrator persisting progress to store.
func NewOrchestrator(store config.SessionStore, deps Deps) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		deps:   deps,
		logger: deps.Logger.With().Str("component", "setup").Logger(),
	}

	authenticator := NewAuthenticator(deps)
	linker := NewPaymentLinker(deps)
	registrar := NewSoftwareRegistrar(deps)
	pricing := NewPricingConfigurator(deps)
	initializer := NewProjectInitializer(deps)
	out := deps.Printer

	o.steps = []step{
		{
			id:    StepAuthentication,
			title: "Authentication",
			skip:  config.Session.IsAuthenticated,
			run: func(ctx context.Context, sess config.Session) (config.Session, error) {
				return authenticator.Authenticate(ctx, sess.Username)
			},
			verify: func(sess config.Session) error {
				if !sess.IsAuthenticated() {
					return ErrSessionNotPersisted
				}
				out.Success("Successfully logged in!")
				return nil
			},
		},
		{
			id:    StepPaymentLink,
			title: "Stripe Integration",
			skip:  config.Session.IsPaymentLinked,
			run: func(ctx context.Context, sess config.Session) (config.Session, error) {
				return linker.Link(ctx, sess, true)
			},
		},
		{
			id:    StepSoftware,
			title: "Software Registration",
			skip:  config.Session.HasSoftware,
			run: func(ctx context.Context, sess config.Session) (config.Session, error) {
				patch, software, err := registrar.Register(ctx, sess, true)
				if err != nil {
					return config.Session{}, err
				}
				out.Success("Software record created!")
				out.Line("Software ID: %s", software.ID)
				return patch, nil
			},
		},
		{
			id:    StepPricing,
			title: "Pricing Setup",
			run: func(ctx context.Context, sess config.Session) (config.Session, error) {
				req, err := forms.Pricing(deps.Prompter, forms.PricingPreset{})
				if err != nil {
					return config.Session{}, err
				}
				if err := pricing.Configure(ctx, sess, req); err != nil {
					return config.Session{}, err
				}
				out.Success("Pricing created!")
				out.Line("Model: %s", req.Model)
				out.Line("Price: $%.2f", req.Price)
				return config.Session{}, nil
			},
		},
		{
			id:    StepProjectInit,
			title: "Project Initialization",
			run: func(ctx context.Context, _ config.Session) (config.Session, error) {
				return config.Session{}, initializer.Initialize(ctx)
			},
		},
	}
	return o
}

// Run executes every step whose goal does not already hold, in order, and
// stops at the first failure.
func (o *Orchestrator) Run(ctx context.Context) error {
	out := o.deps.Printer
	out.Line("Welcome to Code Checkout! Let's get your project set up. 🚀")

	for i, s := range o.steps {
		if err := o.runStep(ctx, i+1, s); err != nil {
			return &StepError{Step: s.id, Err: err}
		}
	}

	out.Blank()
	out.Line("✨ All done! Your project is now set up with Code Checkout!")
	out.Section("What's next?")
	out.Line("1. Commit the changes to your repository")
	out.Line("2. Push your changes")
	out.Line("3. Start using Code Checkout in your project")
	return nil
}

func (o *Orchestrator) runStep(ctx context.Context, number int, s step) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sess, err := o.store.Load()
	if err != nil {
		return err
	}

	if s.skip != nil && s.skip(*sess) {
		o.logger.Debug().Str("step", s.id.String()).Msg("already complete, skipping")
		return nil
	}

	o.deps.Printer.Section(fmt.Sprintf("Step %d: %s", number, s.title))
	o.logger.Debug().Str("step", s.id.String()).Msg("running step")

	patch, err := s.run(ctx, *sess)
	if err != nil {
		return err
	}

	if !patch.IsZero() {
		if err := o.store.Save(patch); err != nil {
			return err
		}
	}

	if s.verify == nil {
		return nil
	}
	saved, err := o.store.Load()
	if err != nil {
		o.logger.Debug().Err(err).Msg("session read-back failed")
		return ErrSessionNotPersisted
	}
	return s.verify(*saved)
}
