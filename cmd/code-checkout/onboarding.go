package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/forms"
	"github.com/riff-tech/code-checkout-cli/internal/setup"
	"github.com/riff-tech/code-checkout-cli/internal/validation"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive setup for Code Checkout",
		Long: `Walk through account creation, Stripe onboarding, software registration,
pricing and project initialization. Steps that are already complete are
skipped, so an interrupted setup can simply be run again.`,
		Example: `  code-checkout
  code-checkout init`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a)
		},
	}
}

func runInit(cmd *cobra.Command, a *app) error {
	err := setup.NewOrchestrator(a.store, a.setupDeps()).Run(cmd.Context())
	if err == nil {
		return nil
	}
	var stepErr *setup.StepError
	if errors.As(err, &stepErr) {
		return failedWith(fmt.Sprintf("Setup failed at %s", stepErr.Step), stepErr.Err)
	}
	return failedWith("Setup failed", err)
}

func newLinkPaymentCmd(a *app) *cobra.Command {
	var noOpen bool

	cmd := &cobra.Command{
		Use:     "link-payment-account",
		Aliases: []string{"link-stripe"},
		Short:   "Link your Stripe account with Code Checkout",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed("link Stripe account", runLinkPayment(cmd.Context(), a, !noOpen))
		},
	}

	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Print the onboarding URL instead of offering to open a browser")

	return cmd
}

func runLinkPayment(ctx context.Context, a *app, offerBrowser bool) error {
	sess, err := a.requireLogin("link your Stripe account")
	if err != nil {
		return err
	}

	patch, err := setup.NewPaymentLinker(a.setupDeps()).Link(ctx, *sess, offerBrowser)
	if err != nil {
		return err
	}
	if err := a.store.Save(patch); err != nil {
		return err
	}

	a.out.Section("Next step:")
	a.out.Line("Create your software: code-checkout create-software")
	return nil
}

func newCreateSoftwareCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "create-software",
		Aliases: []string{"software:create"},
		Short:   "Create a software record from your package.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed("create software", runCreateSoftware(cmd.Context(), a))
		},
	}
}

func runCreateSoftware(ctx context.Context, a *app) error {
	sess, err := a.requireLogin("create software")
	if err != nil {
		return err
	}

	patch, software, err := setup.NewSoftwareRegistrar(a.setupDeps()).Register(ctx, *sess, false)
	if err != nil {
		return err
	}
	if err := a.store.Save(patch); err != nil {
		return err
	}

	a.out.Success("Software record created successfully!")
	a.out.Field("Software ID", software.ID)
	a.out.Field("Name", software.Name)
	a.out.Field("Version", software.Version)
	a.out.Field("Extension ID", software.ExtensionID)
	a.out.Section("Next step:")
	a.out.Line("Create pricing: code-checkout create-pricing")
	return nil
}

type pricingFlags struct {
	model     string
	price     string
	trialDays string
	currency  string
}

func newCreatePricingCmd(a *app) *cobra.Command {
	var f pricingFlags

	cmd := &cobra.Command{
		Use:     "create-pricing",
		Aliases: []string{"pricing:create"},
		Short:   "Set the price of your software",
		Example: `  code-checkout create-pricing
  code-checkout create-pricing --model subscription --price 4.99 --free-trial-days 14
  code-checkout create-pricing -m one-time -p 19.99`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed("create pricing", runCreatePricing(cmd.Context(), a, f))
		},
	}

	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Pricing model (subscription or one-time)")
	cmd.Flags().StringVarP(&f.price, "price", "p", "", fmt.Sprintf("Price between $%.2f and $%.2f", validation.MinPrice, validation.MaxPrice))
	cmd.Flags().StringVarP(&f.trialDays, "free-trial-days", "t", "", "Free trial length in days (subscriptions only)")
	cmd.Flags().StringVar(&f.currency, "currency", api.DefaultCurrency, "ISO 4217 currency code")

	return cmd
}

func (f pricingFlags) preset() (forms.PricingPreset, error) {
	var preset forms.PricingPreset

	if f.model != "" {
		if err := validation.PricingModel(f.model); err != nil {
			return preset, invalidFlag("model", err)
		}
		preset.Model = f.model
	}
	if f.price != "" {
		price, err := validation.ParsePrice(f.price)
		if err != nil {
			return preset, invalidFlag("price", err)
		}
		preset.Price = &price
	}
	if f.trialDays != "" {
		days, err := validation.ParseFreeTrialDays(f.trialDays)
		if err != nil {
			return preset, invalidFlag("free-trial-days", err)
		}
		preset.FreeTrialDays = &days
	}
	currency, err := validation.Currency(f.currency)
	if err != nil {
		return preset, invalidFlag("currency", err)
	}
	preset.Currency = currency

	return preset, nil
}

func runCreatePricing(ctx context.Context, a *app, f pricingFlags) error {
	sess, err := a.requireSoftware("create pricing")
	if err != nil {
		return err
	}

	preset, err := f.preset()
	if err != nil {
		return err
	}
	if preset.Model == "" || preset.Price == nil {
		a.out.Line("Let's set up pricing for your software...")
	}

	req, err := forms.Pricing(a.prompter, preset)
	if err != nil {
		return err
	}
	if err := setup.NewPricingConfigurator(a.setupDeps()).Configure(ctx, *sess, req); err != nil {
		return err
	}

	a.out.Success("Pricing created successfully!")
	a.out.Field("Model", req.Model)
	a.out.Field("Price", formatPrice(req.Price, req.Currency))
	if req.FreeTrialDays != nil && *req.FreeTrialDays > 0 {
		a.out.Field("Free Trial", fmt.Sprintf("%d days", *req.FreeTrialDays))
	}
	a.out.Section("Next step:")
	a.out.Line("Run initialization script: code-checkout run-script")
	return nil
}

func newRunScriptCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run-script",
		Short: "Run the Code Checkout initialization script in your project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSoftware("run the initialization script"); err != nil {
				return err
			}
			if err := setup.NewProjectInitializer(a.setupDeps()).Initialize(cmd.Context()); err != nil {
				return failedWith("Initialization failed", err)
			}

			a.out.Blank()
			a.out.Line("Your project is now set up with Code Checkout!")
			a.out.Line("You can now:")
			a.out.Line("1. Commit the changes to your repository")
			a.out.Line("2. Push your changes")
			a.out.Line("3. Start using Code Checkout in your project")
			return nil
		},
	}
}
