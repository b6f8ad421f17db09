package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/browser"
	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/httpclient"
	"github.com/riff-tech/code-checkout-cli/internal/logging"
	"github.com/riff-tech/code-checkout-cli/internal/project"
	"github.com/riff-tech/code-checkout-cli/internal/prompt"
	"github.com/riff-tech/code-checkout-cli/internal/setup"
	"github.com/riff-tech/code-checkout-cli/internal/ui"
)

// deps overrides the interactive and external collaborators. Zero values
// select the real implementations.
type deps struct {
	viper    *viper.Viper
	prompter prompt.Prompter
	runner   project.ScriptRunner
	browser  browser.Opener
	now      func() time.Time

	// releasesURL and releaseClient point version --check at a test server.
	releasesURL   string
	releaseClient *http.Client
}

// app is the per-invocation state shared by every command. It is filled in
// by the root command's PersistentPreRunE.
type app struct {
	deps deps

	settings    config.Settings
	logger      zerolog.Logger
	store       config.SessionStore
	sessionPath string
	client      *api.Client
	out         *ui.Printer
	prompter    prompt.Prompter
	runner      project.ScriptRunner
	browser     browser.Opener
	now         func() time.Time
}

func (a *app) init(cmd *cobra.Command, v *viper.Viper) error {
	dotEnvErr := config.LoadDotEnv(v)
	a.settings = config.LoadSettings(v)
	a.logger = logging.New(cmd.ErrOrStderr(), a.settings.Debug)
	if dotEnvErr != nil {
		a.logger.Warn().Err(dotEnvErr).Msg("ignoring project .env file")
	}

	a.now = a.deps.now
	if a.now == nil {
		a.now = time.Now
	}

	httpClient, err := httpclient.NewFromSettings(a.settings)
	if err != nil {
		return fmt.Errorf("create http client: %w", err)
	}

	store := config.NewFileStore(a.settings.Dir, a.logger)
	a.store = store
	a.sessionPath = store.Path()

	a.client = api.NewClient(a.settings.APIURL,
		api.WithHTTPClient(httpClient),
		api.WithTokenSource(store),
		api.WithLogger(a.logger),
		api.WithUserAgent("code-checkout-cli/"+Version),
		api.WithClock(a.now),
	)

	a.out = ui.NewPrinter(cmd.OutOrStdout())

	a.prompter = a.deps.prompter
	if a.prompter == nil {
		a.prompter = prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	a.runner = a.deps.runner
	if a.runner == nil {
		a.runner = project.NewExecRunner(a.logger)
	}
	a.browser = a.deps.browser
	if a.browser == nil {
		a.browser = browser.System{}
	}

	a.logger.Debug().
		Str("api_url", a.settings.APIURL).
		Str("dir", a.settings.Dir).
		Str("env", string(a.settings.Environment)).
		Msg("settings loaded")
	return nil
}

func (a *app) setupDeps() setup.Deps {
	return setup.Deps{
		API:       a.client,
		Prompter:  a.prompter,
		Printer:   a.out,
		Browser:   a.browser,
		Runner:    a.runner,
		Logger:    a.logger,
		Dir:       a.settings.Dir,
		ReturnURL: a.settings.ReturnURL,
		Now:       a.now,
	}
}

func newRootCmd(d deps) *cobra.Command {
	v := d.viper
	if v == nil {
		v = config.NewViper()
	}
	a := &app{deps: d}

	rootCmd := &cobra.Command{
		Use:   "code-checkout",
		Short: "Set up licensing and payments for your VS Code extension",
		Long: `code-checkout connects a VS Code extension project to the Code Checkout
licensing platform: account, Stripe payouts, software record, pricing,
license keys and usage analytics.

Run 'code-checkout' with no arguments for the guided setup.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a)
		},
	}
	rootCmd.SetVersionTemplate("code-checkout-cli version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.Bool("debug", false, "Print diagnostic logs to stderr")
	flags.String("dir", "", "Project directory (default: current directory)")
	flags.String("api-url", config.DefaultAPIURL, "Code Checkout API base URL")
	_ = flags.MarkHidden("api-url")
	_ = config.BindFlags(v, flags)

	rootCmd.SetGlobalNormalizationFunc(kebabFlagNames)

	rootCmd.AddCommand(
		newInitCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newLinkPaymentCmd(a),
		newCreateSoftwareCmd(a),
		newCreatePricingCmd(a),
		newSoftwareGetCmd(a),
		newSoftwarePricingCmd(a),
		newLicenseCreateCmd(a),
		newLicenseListCmd(a),
		newLicenseRevokeCmd(a),
		newAnalyticsEventsCmd(a),
		newAnalyticsSummaryCmd(a),
		newRunScriptCmd(a),
		newVersionCmd(a),
	)

	return rootCmd
}

// kebabFlagNames accepts camelCase flag spellings such as --maxMachines.
func kebabFlagNames(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return pflag.NormalizedName(b.String())
}
