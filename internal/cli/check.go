package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enginewatch/enginewatch/internal/config"
	"github.com/enginewatch/enginewatch/internal/notify"
	"github.com/enginewatch/enginewatch/internal/tcec"
)

// CheckResult describes the in-progress game and who it would ping.
type CheckResult struct {
	White     string         `json:"white"`
	Black     string         `json:"black"`
	Event     string         `json:"event"`
	Date      string         `json:"date"`
	OutOfBook bool           `json:"out_of_book"`
	Matches   []config.Match `json:"matches,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var pgnFile string

	cmd := &cobra.Command{
		Use:   "check <watch-config>",
		Short: "Fetch the current game and show who would be notified",
		Long: `Fetch the current game once, match it against a watch config, and
show the notification that would be sent. Nothing is posted and no
state is recorded, so check is safe to run next to a live daemon.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], pgnFile, cmd)
		},
	}

	cmd.Flags().StringVar(&pgnFile, "pgn-file", "", "read the game from a local PGN file instead of the live feed")

	return cmd
}

func runCheck(opts *RootOptions, ref, pgnFile string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.NewProvider(ref).Load(cmd.Context())
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		_ = formatter.Error(config.ErrCodeParse, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unable to load watch config", err)
	}

	game, err := currentGame(cmd, pgnFile)
	if err != nil {
		_ = formatter.Error(config.ErrCodeFetch, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unable to fetch game", err)
	}

	index := cfg.Index()
	matches := index.MatchPlayer(game.White)
	matches = append(matches, index.MatchPlayer(game.Black)...)

	mentions := make([]string, 0)
	for _, m := range matches {
		mentions = append(mentions, m.Users...)
	}

	result := CheckResult{
		White:     game.White.String(),
		Black:     game.Black.String(),
		Event:     game.Event,
		Date:      game.Date,
		OutOfBook: game.OutOfBook(),
		Matches:   matches,
	}
	if game.OutOfBook() {
		result.Message = notify.Message(notify.Content{
			Tournament: game.Event,
			White:      game.White.String(),
			Black:      game.Black.String(),
			Mentions:   mentions,
			SiteURL:    tcec.SiteURL,
		})
	}

	return outputCheckResult(formatter, result)
}

func currentGame(cmd *cobra.Command, pgnFile string) (*tcec.Game, error) {
	if pgnFile != "" {
		data, err := os.ReadFile(pgnFile)
		if err != nil {
			return nil, fmt.Errorf("read PGN file: %w", err)
		}
		return tcec.Parse(string(data))
	}
	return tcec.NewClient("").CurrentGame(cmd.Context())
}

func outputCheckResult(formatter *OutputFormatter, result CheckResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s vs. %s\n", result.White, result.Black)
	fmt.Fprintf(formatter.Writer, "  event: %s (%s)\n", result.Event, result.Date)
	if !result.OutOfBook {
		fmt.Fprintln(formatter.Writer, "  still in book; no notification yet")
		return nil
	}
	if len(result.Matches) == 0 {
		fmt.Fprintln(formatter.Writer, "  no watched engines playing")
		return nil
	}
	for _, m := range result.Matches {
		fmt.Fprintf(formatter.Writer, "  %s -> %v\n", m.Engine, m.Users)
	}
	fmt.Fprintf(formatter.Writer, "  message: %s\n", result.Message)
	return nil
}
