package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/enginewatch/enginewatch/internal/config"
	"github.com/enginewatch/enginewatch/internal/notify"
	"github.com/enginewatch/enginewatch/internal/poller"
	"github.com/enginewatch/enginewatch/internal/store"
	"github.com/enginewatch/enginewatch/internal/tcec"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var live bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the notification daemon",
		Long: `Run the notification daemon.

Polls the live PGN feed, matches each new out-of-book game against the
watch config, and posts one notification per game to the configured
webhook. The watch config source and the webhook come from the settings
file or from environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(rootOpts, live, cmd)
		},
	}

	cmd.Flags().BoolVar(&live, "live", false, "subscribe to the site's socket feed instead of polling the PGN endpoint")

	return cmd
}

func runDaemon(opts *RootOptions, live bool, cmd *cobra.Command) error {
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
	if opts.Verbose {
		settings.LogLevel = "debug"
	}
	if err := settings.ValidateForRun(); err != nil {
		_ = formatter.Error(config.ErrCodeSettings, err.Error(), nil)
		return WrapExitError(ExitCommandError, "settings incomplete", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), settings)

	st, err := store.Open(settings.StateDB)
	if err != nil {
		_ = formatter.Error(config.ErrCodeSettings, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unable to open state database", err)
	}
	defer st.Close()

	// Local watch configs get a filesystem watcher so edits take
	// effect without waiting for the next poll; remote configs are
	// re-fetched each cycle.
	var provider config.Provider
	if isRemote(settings.Config) {
		provider = config.NewProvider(settings.Config)
	} else {
		watcher, err := config.NewWatcher(settings.Config, logger)
		if err != nil {
			var verrs config.ValidationErrors
			if errors.As(err, &verrs) {
				return outputValidationErrors(formatter, verrs)
			}
			_ = formatter.Error(config.ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unable to load watch config", err)
		}
		defer watcher.Close()
		provider = watcher
	}

	var source poller.Source
	if live {
		feed, err := tcec.NewLiveFeed(tcec.SiteURL, logger)
		if err != nil {
			_ = formatter.Error(config.ErrCodeFetch, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unable to open live feed", err)
		}
		defer feed.Close()
		source = feed
	} else {
		source = tcec.NewClient(settings.PGNURL)
	}

	p := poller.New(poller.Options{
		Source:   source,
		Provider: provider,
		Notifier: notify.NewWebhook(settings.NotifyWebhook),
		Store:    st,
		Logger:   logger,
		Interval: time.Duration(settings.PollInterval),
	})

	logger.Info("starting",
		"config", settings.Config,
		"state_db", settings.StateDB,
		"interval", time.Duration(settings.PollInterval).String(),
		"live", live)

	err = p.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return WrapExitError(ExitCommandError, "daemon stopped", err)
}

// isRemote reports whether a watch config reference is an http(s) URL.
func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
