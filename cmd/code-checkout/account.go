package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/riff-tech/code-checkout-cli/internal/auth"
	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/httpclient"
	"github.com/riff-tech/code-checkout-cli/internal/setup"
	"github.com/riff-tech/code-checkout-cli/internal/validation"
)

func newLoginCmd(a *app) *cobra.Command {
	var (
		email    string
		register bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in or create an account on the Code Checkout platform",
		Example: `  code-checkout login
  code-checkout login --email dev@example.com
  code-checkout login --register`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failedWith("Authentication failed", runLogin(cmd.Context(), a, email, register))
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Email of an existing account")
	cmd.Flags().BoolVar(&register, "register", false, "Create a new account")

	return cmd
}

func runLogin(ctx context.Context, a *app, email string, register bool) error {
	if email != "" {
		if err := validation.Email(email); err != nil {
			return invalidFlag("email", err)
		}
	}

	a.out.Line("Welcome to Code Checkout! Let's get you logged in.")

	authenticator := setup.NewAuthenticator(a.setupDeps())

	var (
		patch config.Session
		err   error
	)
	if register {
		patch, err = authenticator.Register(ctx)
	} else {
		username := email
		if username == "" {
			if sess, loadErr := a.store.Load(); loadErr == nil {
				username = sess.Username
			}
		}
		patch, err = authenticator.Authenticate(ctx, username)
	}
	if err != nil {
		return err
	}

	if err := a.store.Save(patch); err != nil {
		return err
	}
	if !a.store.IsAuthenticated() {
		return setup.ErrSessionNotPersisted
	}

	a.out.Success("Successfully logged in!")
	a.out.Line("Your Publisher ID is: %s", patch.PublisherID)
	a.out.Section("Next steps:")
	a.out.Line("1. Link your Stripe account: code-checkout link-payment-account")
	a.out.Line("2. Create your software: code-checkout create-software")
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the local session file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := a.store.Clear()
			if err != nil {
				return failed("log out", err)
			}
			if existed {
				a.out.Success("Successfully logged out from Code Checkout.")
			} else {
				a.out.Line("You are not currently logged in.")
			}
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the local session and configuration",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(a)
		},
	}
}

func runStatus(a *app) error {
	sess, err := a.store.Load()
	if err != nil {
		return err
	}

	a.out.Section("Code Checkout Status")
	a.out.Field("Project", a.settings.Dir)
	a.out.Field("Session file", a.sessionPath)
	a.out.Field("API", a.settings.APIURL)
	a.out.Field("Proxy", httpclient.ProxyInfo(&a.settings.Proxy))

	if !sess.IsAuthenticated() {
		a.out.Blank()
		a.out.Line("Not logged in.")
		a.out.Hint("Run: code-checkout login")
		return nil
	}

	a.out.Section("Account")
	if sess.Username != "" {
		a.out.Field("User", sess.Username)
	}
	a.out.Field("Publisher ID", sess.PublisherID)
	a.out.Field("Session", tokenState(sess.AuthToken, a.now()))
	a.out.Field("Stripe linked", yesNo(sess.IsPaymentLinked()))

	a.out.Section("Software")
	if !sess.HasSoftware() {
		a.out.Line("No software registered yet.")
		a.out.Hint("Run: code-checkout create-software")
		return nil
	}
	a.out.Field("Software ID", sess.SoftwareID)
	if ext := sess.ExtensionQuery(); ext != "" {
		a.out.Field("Extension ID", ext)
	}
	return nil
}

// tokenState describes the identity token's expiry without verifying it.
func tokenState(token string, now time.Time) string {
	expires, err := auth.ExpiresAt(token)
	switch {
	case err != nil:
		return "unreadable token"
	case expires.IsZero():
		return "active"
	case !expires.After(now):
		return "expired " + expires.Local().Format("Jan 2, 2006 3:04 PM") + " (run code-checkout login)"
	default:
		return "active until " + expires.Local().Format("Jan 2, 2006 3:04 PM")
	}
}
