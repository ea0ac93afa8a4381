package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/enginewatch/enginewatch/internal/config"
)

// ValidationResult holds watch config validation results.
type ValidationResult struct {
	Valid   bool                     `json:"valid"`
	Users   int                      `json:"users,omitempty"`
	Engines []string                 `json:"engines,omitempty"`
	Errors  []config.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <watch-config>",
		Short: "Validate a watch config without running the daemon",
		Long: `Validate a watch config file or URL without running the daemon.

Checks that the document parses, that every user ID is non-empty, and
that every user lists at least one non-empty engine name. Comments and
trailing commas in the document are fine.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, ref string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Loading watch config from %s", ref)

	cfg, err := config.NewProvider(ref).Load(cmd.Context())
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		_ = formatter.Error(config.ErrCodeParse, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unable to load watch config", err)
	}

	return outputValidateSuccess(formatter, cfg)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, cfg *config.WatchConfig) error {
	engines := cfg.Engines()

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:   true,
			Users:   len(cfg.Users),
			Engines: engines,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Watch config valid: %d user(s), %d engine(s)\n", len(cfg.Users), len(engines))
	for _, e := range engines {
		fmt.Fprintf(formatter.Writer, "  %s: %d follower(s)\n", e, len(cfg.Index().UsersFor(e)))
	}
	return nil
}

// outputValidationErrors outputs every violation found in the document.
func outputValidationErrors(formatter *OutputFormatter, errs config.ValidationErrors) error {
	// A missing or unreachable source is a command error, not a
	// document problem.
	for _, e := range errs {
		if e.Code == config.ErrCodeNotFound || e.Code == config.ErrCodeFetch {
			_ = formatter.Error(e.Code, e.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", e.Code, e.Message))
		}
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
