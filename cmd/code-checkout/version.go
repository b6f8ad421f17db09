package main

import (
	"errors"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/riff-tech/code-checkout-cli/internal/updater"
)

func newVersionCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.out.Line("code-checkout-cli version %s", Version)
			a.out.Line("  Commit:     %s", Commit)
			a.out.Line("  Built:      %s", BuildDate)
			a.out.Line("  Go version: %s", runtime.Version())
			a.out.Line("  OS/Arch:    %s/%s", runtime.GOOS, runtime.GOARCH)

			if !check {
				return nil
			}
			return checkForUpdate(cmd, a)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check whether a newer release is available")

	return cmd
}

func checkForUpdate(cmd *cobra.Command, a *app) error {
	var checker *updater.Checker
	if a.deps.releasesURL != "" {
		checker = updater.NewWithClient(Version, a.deps.releaseClient, a.deps.releasesURL)
	} else {
		var err error
		if checker, err = updater.New(Version, &a.settings.Proxy); err != nil {
			return failed("check for updates", err)
		}
	}

	info, err := checker.CheckForUpdate(cmd.Context())
	if errors.Is(err, updater.ErrNoUpdateAvailable) {
		a.out.Blank()
		a.out.Success("You are running the latest version.")
		return nil
	}
	if err != nil {
		return failed("check for updates", err)
	}

	a.out.Blank()
	a.out.Line("A new version is available: %s (you have %s)", info.LatestVersion, info.CurrentVersion)
	if info.ReleaseURL != "" {
		a.out.Hint("Release notes: %s", info.ReleaseURL)
	}
	a.out.Hint("Upgrade with: npm install -g @riff-tech/code-checkout")
	return nil
}
