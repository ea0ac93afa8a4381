package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enginewatch/enginewatch/internal/config"
	"github.com/enginewatch/enginewatch/internal/store"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent notification deliveries",
		Long: `Show recent notification deliveries from the state database, newest
first. The database path comes from the settings file, or defaults to
the daemon's default path.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, limit, cmd)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of deliveries to show")

	return cmd
}

func runHistory(opts *RootOptions, limit int, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	settings, err := config.LoadSettings(opts.Settings)
	if err != nil {
		_ = formatter.Error(config.ErrCodeSettings, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unable to load settings", err)
	}

	if _, err := os.Stat(settings.StateDB); err != nil {
		msg := fmt.Sprintf("state database not found: %s", settings.StateDB)
		_ = formatter.Error(config.ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	st, err := store.Open(settings.StateDB)
	if err != nil {
		_ = formatter.Error(config.ErrCodeSettings, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unable to open state database", err)
	}
	defer st.Close()

	deliveries, err := st.ListDeliveries(cmd.Context(), limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "unable to list deliveries", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(deliveries)
	}

	if len(deliveries) == 0 {
		fmt.Fprintln(formatter.Writer, "no deliveries recorded")
		return nil
	}
	for _, d := range deliveries {
		line := fmt.Sprintf("%s  %-5s  engines=%s", d.CreatedAt.Format("2006-01-02 15:04:05"), d.Status, strings.Join(d.Engines, ","))
		if len(d.Mentions) > 0 {
			line += "  mentions=" + strings.Join(d.Mentions, ",")
		}
		if d.Error != "" {
			line += "  error=" + d.Error
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}
