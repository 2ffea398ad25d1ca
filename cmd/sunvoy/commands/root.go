// Package commands wires configuration, logging and the harvest workflow into
// the sunvoy command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loosehose/sunvoy/internal/config"
	"github.com/loosehose/sunvoy/internal/logging"
)

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	cfg    config.Config
	logger *zap.Logger

	output      string
	credentials string
	parser      string
	debug       bool
	table       bool
}

// NewRootCmd builds the command tree. Running it with no subcommand performs
// a harvest.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "sunvoy",
		Short: "sunvoy signs in to the Sunvoy challenge and saves its user directory to JSON.",
		Long: `sunvoy reuses a saved session when it still works, otherwise logs in with
the configured credentials, fetches the user directory and the signed-in
user's settings, and writes the merged list to a JSON file.

Configuration is read from SUNVOY_* environment variables and an optional
.env file; flags override both.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.harvest(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.credentials, "credentials", "c", "", "session cache file (default "+config.DefaultCredentialsFile+")")
	flags.StringVar(&a.parser, "parser", "", "HTML parser: regex or dom (default "+config.ParserRegex+")")
	flags.BoolVarP(&a.debug, "debug", "d", false, "enable debug logging")

	cmd.Flags().StringVarP(&a.output, "output", "o", "", "output file (default "+config.DefaultOutputFile+")")
	cmd.Flags().BoolVarP(&a.table, "table", "t", false, "print the saved records as a table")

	cmd.AddCommand(newLogoutCmd(a))
	return cmd
}

// ExecuteContext runs the command line and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	return execute(ctx, NewRootCmd(), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if a.output != "" {
		cfg.OutputFile = a.output
	}
	if a.credentials != "" {
		cfg.CredentialsFile = a.credentials
	}
	if a.parser != "" {
		cfg.Parser = a.parser
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Sanitize(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(cfg.Log)
	a.logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("base_url", cfg.BaseURL),
		zap.String("parser", cfg.Parser),
		zap.String("credentials_file", cfg.CredentialsFile),
		zap.String("output_file", cfg.OutputFile),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.String("user_agent", cfg.UserAgent),
	)
	return nil
}
