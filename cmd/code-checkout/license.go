package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/forms"
	"github.com/riff-tech/code-checkout-cli/internal/validation"
)

func newLicenseCreateCmd(a *app) *cobra.Command {
	var preset forms.LicensePreset

	cmd := &cobra.Command{
		Use:     "license-create",
		Aliases: []string{"license:create"},
		Short:   "Create a new license key",
		Example: `  code-checkout license-create
  code-checkout license-create --max-machines 3 --expiration-date 2030-12-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("max-machines") {
				if err := validation.MaxMachines(preset.MaxMachines); err != nil {
					return invalidFlag("max-machines", err)
				}
			}
			return failed("create license", runLicenseCreate(cmd.Context(), a, preset))
		},
	}

	cmd.Flags().IntVarP(&preset.MaxMachines, "max-machines", "m", 0, "Maximum number of machines")
	cmd.Flags().StringVarP(&preset.ExpirationDate, "expiration-date", "e", "", "Expiration date (YYYY-MM-DD)")

	return cmd
}

func runLicenseCreate(ctx context.Context, a *app, preset forms.LicensePreset) error {
	sess, err := a.requireSoftware("create a license")
	if err != nil {
		return err
	}

	if preset.ExpirationDate != "" {
		if _, err := validation.ParseExpirationDate(preset.ExpirationDate, a.now()); err != nil {
			return invalidFlag("expiration-date", err)
		}
	}
	if preset.MaxMachines == 0 || preset.ExpirationDate == "" {
		a.out.Line("Let's create a new license...")
	}

	req, err := forms.License(a.prompter, a.now(), preset)
	if err != nil {
		return err
	}

	a.out.Line("Creating license...")
	license, err := a.client.CreateLicense(ctx, sess.PublisherID, sess.SoftwareID, req)
	if err != nil {
		return err
	}

	a.out.Success("License created successfully!")
	a.out.Field("License Key", license.LicenseKey)
	a.out.Field("Status", license.Status)
	a.out.Field("Max Machines", license.MaxMachines)
	a.out.Field("Expiration Date", formatDate(license.ExpirationDate))
	return nil
}

func newLicenseListCmd(a *app) *cobra.Command {
	var params api.ListLicensesParams

	cmd := &cobra.Command{
		Use:     "license-list",
		Aliases: []string{"license:list"},
		Short:   "List license keys for your software",
		Example: `  code-checkout license-list
  code-checkout license-list --status all --limit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.LicenseStatus(params.Status); err != nil {
				return invalidFlag("status", err)
			}
			if err := validation.Pagination(params.Limit, params.Offset); err != nil {
				if errors.Is(err, validation.ErrInvalidOffset) {
					return invalidFlag("offset", err)
				}
				return invalidFlag("limit", err)
			}
			return failed("list licenses", runLicenseList(cmd.Context(), a, params))
		},
	}

	cmd.Flags().StringVarP(&params.Status, "status", "s", validation.StatusActive, "Filter by status (active, inactive, revoked, all)")
	cmd.Flags().IntVarP(&params.Limit, "limit", "l", 10, "Number of licenses to show")
	cmd.Flags().IntVarP(&params.Offset, "offset", "o", 0, "Number of licenses to skip")

	return cmd
}

func runLicenseList(ctx context.Context, a *app, params api.ListLicensesParams) error {
	sess, err := a.requireSoftware("list licenses")
	if err != nil {
		return err
	}

	if params.Status == validation.StatusAll {
		params.Status = ""
	}

	a.out.Line("Fetching licenses...")
	list, err := a.client.ListLicenses(ctx, sess.PublisherID, sess.SoftwareID, params)
	if err != nil {
		return err
	}

	if len(list.Licenses) == 0 {
		a.out.Line("No licenses found.")
		return nil
	}

	a.out.Section("Licenses:")
	for _, license := range list.Licenses {
		a.out.Blank()
		a.out.Divider()
		a.out.Field("License Key", license.LicenseKey)
		a.out.Field("Status", license.Status)
		a.out.Field("Max Machines", license.MaxMachines)
		a.out.Field("Expiration Date", formatDate(license.ExpirationDate))
		if license.Metadata.CustomerID != "" {
			a.out.Field("Customer ID", license.Metadata.CustomerID)
		}
		if license.Metadata.RevokedAt != "" {
			a.out.Field("Revoked At", formatDate(license.Metadata.RevokedAt))
			a.out.Field("Revoke Reason", license.Metadata.RevokeReason)
		}
		a.out.Field("Created At", formatDate(license.CreatedAt))
	}
	a.out.Blank()
	a.out.Divider()
	a.out.Line("Total licenses shown: %s", formatCount(len(list.Licenses)))
	return nil
}

func newLicenseRevokeCmd(a *app) *cobra.Command {
	var licenseID, reason string

	cmd := &cobra.Command{
		Use:     "license-revoke",
		Aliases: []string{"license:revoke"},
		Short:   "Revoke a license key",
		Example: `  code-checkout license-revoke --license-id LK-1234 --reason "Refund issued"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("reason") {
				if err := validation.RevocationReason(reason); err != nil {
					return invalidFlag("reason", err)
				}
			}
			return failed("revoke license", runLicenseRevoke(cmd.Context(), a, licenseID, reason))
		},
	}

	cmd.Flags().StringVarP(&licenseID, "license-id", "l", "", "License key to revoke")
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Reason for revocation")

	return cmd
}

func runLicenseRevoke(ctx context.Context, a *app, licenseID, reason string) error {
	sess, err := a.requireSoftware("revoke a license")
	if err != nil {
		return err
	}

	if licenseID == "" {
		if licenseID, err = forms.LicenseID(a.prompter); err != nil {
			return err
		}
	}
	if reason == "" {
		a.out.Line("Please provide a reason for revoking the license...")
		if reason, err = forms.RevocationReason(a.prompter); err != nil {
			return err
		}
	}

	a.out.Line("Revoking license...")
	license, err := a.client.RevokeLicense(ctx, sess.PublisherID, licenseID, api.RevokeLicenseRequest{Reason: reason})
	if err != nil {
		return err
	}

	a.out.Success("License revoked successfully!")
	a.out.Field("License Key", license.LicenseKey)
	a.out.Field("Status", license.Status)
	a.out.Field("Revoke Reason", license.Metadata.RevokeReason)
	if license.Metadata.RevokedAt != "" {
		a.out.Field("Revoked At", formatDate(license.Metadata.RevokedAt))
	}
	return nil
}
