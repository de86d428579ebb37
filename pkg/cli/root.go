package cli

import (
	"fmt"
	"os"

	"github.com/dshills/logicflow/pkg/config"
	"github.com/dshills/logicflow/pkg/logging"
	"github.com/spf13/cobra"
)

const (
	// Version is the current version of logicflow
	Version = "1.0.0"
)

// Options holds the global flags of the CLI
type Options struct {
	ConfigPath string
	Debug      bool

	// populated by the root command before any subcommand runs
	Config *config.Config
	Logger logging.Logger
}

// NewRootCommand creates the root cobra command for logicflow
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "logicflow",
		Short: "logicflow - build and evaluate arithmetic/logic node graphs",
		Long: `logicflow assembles small arithmetic and logic expressions as directed graphs
of typed nodes (constants, variables, operations, conditionals, results) and
evaluates them through an evaluation service.

It also ships a reference evaluation service for local use.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			opts.Config = cfg

			opts.Logger = logging.NewWithOptions(cmd.ErrOrStderr(), logging.Options{
				Prefix: logging.DefaultPrefix,
				Level:  cfg.Level(),
				Debug:  opts.Debug,
			})
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Configuration file (default: $LOGICFLOW_CONFIG or ./logicflow.yaml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewEvaluateCommand(opts))
	cmd.AddCommand(NewKindsCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// configPath resolves the configuration file: flag, then LOGICFLOW_CONFIG, then ./logicflow.yaml
func (o *Options) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	if env := os.Getenv("LOGICFLOW_CONFIG"); env != "" {
		return env
	}
	return "logicflow.yaml"
}

// NewVersionCommand prints the version
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logicflow %s\n", Version)
			return nil
		},
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}
