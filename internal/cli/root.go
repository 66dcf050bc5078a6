// Package cli is the keyshop command line: it drives the storefront services
// against a backend and keeps its session in a YAML state file.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/mcoot/keyshop/internal/factory"
	"github.com/mcoot/keyshop/internal/logging"
	"github.com/mcoot/keyshop/internal/model"
)

// Scope is the storage partition every CLI invocation shares
const Scope model.ScopeID = "cli"

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()
	var closeLogger func()

	rootCmd := &cobra.Command{
		Use:   "keyshop",
		Short: "CLI for the keyshop game-key storefront",
		Long: `keyshop browses the storefront, manages a cart and runs the seller
console from a terminal.

The session is kept in a state file between invocations, so log in once
and the following commands run as that user.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logging.FromCore(zapcore.NewNopCore())
			closeLogger = func() {}
			if cfg.Verbose {
				var err error
				logger, closeLogger, err = logging.New("development")
				if err != nil {
					return err
				}
			}

			if err := cfg.EnsureStateDir(); err != nil {
				return err
			}

			var err error
			app, err = factory.New(factory.Config{
				BackendURL:     cfg.ServerURL,
				GatewayTimeout: cfg.Timeout,
				Logger:         logger.With(slog.String("scope", string(Scope))),
				StorageType:    factory.StorageTypeFile,
				StatePath:      cfg.StateFile,
			})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer closeLogger()
			return app.Close()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Backend API URL (env: KEYSHOP_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "Session state file (env: KEYSHOP_STATE_FILE)")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Backend request timeout (env: KEYSHOP_TIMEOUT)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newGenresCmd())
	rootCmd.AddCommand(newCartCmd())
	rootCmd.AddCommand(newOrdersCmd())
	rootCmd.AddCommand(newSellerCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// restore checks the stored session with the backend before a command that
// needs one
func restore(cmd *cobra.Command) model.Session {
	s, _ := app.Sessions.RestoreSession(cmd.Context(), Scope)
	return s
}
