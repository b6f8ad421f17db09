package setup

import (
	"context"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/config"
)

// PricingConfigurator sets the price of the session's software.
type PricingConfigurator struct {
	deps Deps
}

// NewPricingConfigurator creates a PricingConfigurator.
func NewPricingConfigurator(deps Deps) *PricingConfigurator {
	return &PricingConfigurator{deps: deps}
}

// Configure creates pricing for the session's software.
func (c *PricingConfigurator) Configure(ctx context.Context, sess config.Session, req api.PricingRequest) error {
	c.deps.Printer.Line("Creating pricing...")
	return c.deps.API.CreatePricing(ctx, sess.PublisherID, sess.SoftwareID, req)
}
