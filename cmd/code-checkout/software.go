package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSoftwareGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "software-get",
		Aliases: []string{"software:get"},
		Short:   "Show details of your registered software",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSoftware("view software details")
			if err != nil {
				return err
			}

			a.out.Line("Fetching software details...")
			software, err := a.client.GetSoftware(cmd.Context(), sess.PublisherID, sess.SoftwareID)
			if err != nil {
				return failed("fetch software details", err)
			}

			a.out.Section("Software Details:")
			a.out.Divider()
			a.out.Field("Name", software.Name)
			a.out.Field("Version", software.Version)
			a.out.Field("Status", software.Status)
			a.out.Field("Extension ID", software.ExtensionID)
			a.out.Section("Metadata:")
			a.out.Field("Category", software.Metadata.Category)
			a.out.Field("Platform", software.Metadata.Platform)
			return nil
		},
	}
}

func newSoftwarePricingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "software-pricing",
		Aliases: []string{"software:pricing"},
		Short:   "Show the pricing of your software",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSoftware("view pricing")
			if err != nil {
				return err
			}

			a.out.Line("Fetching pricing details...")
			pricing, err := a.client.GetPricing(cmd.Context(), sess.PublisherID, sess.SoftwareID)
			if err != nil {
				return failed("fetch pricing", err)
			}

			a.out.Section("Pricing Details:")
			a.out.Divider()
			a.out.Field("Model", pricing.Model)
			a.out.Field("Price", formatPrice(pricing.Price, pricing.Currency))
			if pricing.BillingCycle != "" {
				a.out.Field("Billing Cycle", pricing.BillingCycle)
			}
			if pricing.FreeTrialDays != nil && *pricing.FreeTrialDays > 0 {
				a.out.Field("Free Trial", fmt.Sprintf("%d days", *pricing.FreeTrialDays))
			}
			if pricing.Metadata.Discount != "" {
				a.out.Field("Discount", pricing.Metadata.Discount)
			}
			return nil
		},
	}
}
