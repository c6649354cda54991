package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/componentkit"
	"github.com/GoCodeAlone/componentkit/feeders"
	"github.com/GoCodeAlone/componentkit/modules/templatecomponent"
)

// Version information
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// PrintVersion prints version information
func PrintVersion() string {
	return fmt.Sprintf("componentctl v%s (commit: %s, built on: %s)", Version, Commit, Date)
}

type globalOptions struct {
	configFiles []string
	environment string
	debug       bool
	verbose     bool
}

// NewRootCommand creates the root command for the componentctl application
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "componentctl",
		Short: "Inspect the template component container",
		Long: `componentctl boots the container with the template component bundle
and prints what the configuration produced: service definitions,
parameters, deprecation notices and the normalized configuration.

Kernel settings are read from APP_ENV, APP_DEBUG, APP_PROJECT_DIR and
APP_CACHE_DIR; flags override them.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.PersistentFlags().StringSliceVarP(&opts.configFiles, "config", "c", nil, "Configuration file (yaml, json, toml or hcl); repeatable")
	cmd.PersistentFlags().StringVarP(&opts.environment, "env", "e", "", "Kernel environment (overrides APP_ENV)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Kernel debug mode (overrides APP_DEBUG)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log container activity to stderr")

	cmd.AddCommand(NewDebugContainerCommand(opts))
	cmd.AddCommand(NewConfigDumpCommand(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), PrintVersion())
		},
	})

	return cmd
}

// kernelConfig reads the environment and applies flag overrides.
func (o *globalOptions) kernelConfig(cmd *cobra.Command) (componentkit.KernelConfig, error) {
	cfg, err := componentkit.LoadKernelConfig(feeders.NewAffixedEnvFeeder(componentkit.EnvPrefix, ""))
	if err != nil {
		return componentkit.KernelConfig{}, err
	}
	if o.environment != "" {
		cfg.Environment = o.environment
	}
	if cmd.Flags().Changed("debug") {
		debug := o.debug
		cfg.Debug = &debug
	}
	return cfg, nil
}

func (o *globalOptions) newKernel(cmd *cobra.Command, extra ...componentkit.KernelOption) (*componentkit.Kernel, error) {
	cfg, err := o.kernelConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts := []componentkit.KernelOption{
		componentkit.WithKernelLogger(newLogger(cmd.ErrOrStderr(), o.verbose)),
		componentkit.WithBundles(templatecomponent.NewBundle()),
		componentkit.WithConfigFiles(o.configFiles...),
	}
	return componentkit.NewKernel(cfg, append(opts, extra...)...), nil
}

// slogLogger adapts log/slog to componentkit.Logger.
type slogLogger struct {
	logger *slog.Logger
}

func newLogger(w io.Writer, verbose bool) componentkit.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slogLogger{logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))}
}

func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
