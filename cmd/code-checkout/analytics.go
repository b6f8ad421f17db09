package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/riff-tech/code-checkout-cli/internal/api"
	"github.com/riff-tech/code-checkout-cli/internal/config"
	"github.com/riff-tech/code-checkout-cli/internal/validation"
)

func analyticsQuery(sess *config.Session, start, end string) (api.AnalyticsQuery, error) {
	for flag, value := range map[string]string{"start-time": start, "end-time": end} {
		if value == "" {
			continue
		}
		if _, err := validation.ParseTimeFilter(value); err != nil {
			return api.AnalyticsQuery{}, invalidFlag(flag, err)
		}
	}
	if err := validation.TimeRange(start, end); err != nil {
		return api.AnalyticsQuery{}, invalidFlag("start-time", err)
	}
	return api.AnalyticsQuery{
		PublisherID: sess.PublisherID,
		SoftwareID:  sess.SoftwareID,
		ExtensionID: sess.ExtensionQuery(),
		StartTime:   start,
		EndTime:     end,
	}, nil
}

func newAnalyticsEventsCmd(a *app) *cobra.Command {
	var commandID, start, end string

	cmd := &cobra.Command{
		Use:     "analytics-events",
		Aliases: []string{"analytics:events"},
		Short:   "List recent usage events for your extension",
		Long: `List usage events recorded by your extension. Without --start-time and
--end-time the last seven days are shown.`,
		Example: `  code-checkout analytics-events
  code-checkout analytics-events --command-id my-ext.activate --start-time 2025-01-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed("fetch analytics events", runAnalyticsEvents(cmd.Context(), a, commandID, start, end))
		},
	}

	cmd.Flags().StringVarP(&commandID, "command-id", "c", "", "Filter by command ID")
	cmd.Flags().StringVarP(&start, "start-time", "s", "", "Start time (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&end, "end-time", "e", "", "End time (YYYY-MM-DD)")

	return cmd
}

func runAnalyticsEvents(ctx context.Context, a *app, commandID, start, end string) error {
	sess, err := a.requireSoftware("view analytics")
	if err != nil {
		return err
	}
	q, err := analyticsQuery(sess, start, end)
	if err != nil {
		return err
	}
	q.CommandID = commandID

	a.out.Line("Fetching analytics events...")
	list, err := a.client.AnalyticsEvents(ctx, q)
	if err != nil {
		return err
	}

	if len(list.Events) == 0 {
		a.out.Line("No events found.")
		return nil
	}

	a.out.Section("Events:")
	for _, event := range list.Events {
		a.out.Blank()
		a.out.Divider()
		a.out.Field("Command ID", event.CommandID)
		a.out.Field("Has Valid License", event.HasValidLicense)
		a.out.Field("Timestamp", formatDateTime(event.Timestamp))
		if event.Metadata.Category != "" {
			a.out.Field("Category", event.Metadata.Category)
		}
		if event.Metadata.Duration > 0 {
			a.out.Field("Duration", fmt.Sprintf("%gms", event.Metadata.Duration))
		}
	}
	a.out.Blank()
	a.out.Divider()
	a.out.Line("Total events shown: %s", formatCount(len(list.Events)))
	return nil
}

func newAnalyticsSummaryCmd(a *app) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:     "analytics-summary",
		Aliases: []string{"analytics:summary"},
		Short:   "Summarize usage of your extension",
		Example: `  code-checkout analytics-summary
  code-checkout analytics-summary --start-time 2025-01-01 --end-time 2025-01-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return failed("fetch analytics summary", runAnalyticsSummary(cmd.Context(), a, start, end))
		},
	}

	cmd.Flags().StringVarP(&start, "start-time", "s", "", "Start time (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&end, "end-time", "e", "", "End time (YYYY-MM-DD)")

	return cmd
}

func runAnalyticsSummary(ctx context.Context, a *app, start, end string) error {
	sess, err := a.requireSoftware("view analytics")
	if err != nil {
		return err
	}
	q, err := analyticsQuery(sess, start, end)
	if err != nil {
		return err
	}

	a.out.Line("Fetching analytics summary...")
	summary, err := a.client.AnalyticsSummary(ctx, q)
	if err != nil {
		return err
	}

	a.out.Section("Analytics Summary:")
	a.out.Divider()
	a.out.Field("Total Events", formatCount(summary.TotalEvents))

	a.out.Section("Command Usage:")
	commands := make([]string, 0, len(summary.CommandCounts))
	for command := range summary.CommandCounts {
		commands = append(commands, command)
	}
	sort.Strings(commands)
	for _, command := range commands {
		a.out.Line("  %s: %s times", command, formatCount(summary.CommandCounts[command]))
	}

	a.out.Section("License Status:")
	a.out.Field("Valid Licenses", formatCount(summary.LicenseStatusCounts.Valid))
	a.out.Field("Invalid Licenses", formatCount(summary.LicenseStatusCounts.Invalid))

	a.out.Section("Time Range:")
	a.out.Field("From", formatDate(summary.TimeRange.Start))
	a.out.Field("To", formatDate(summary.TimeRange.End))
	return nil
}
