package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/componentkit"
	"github.com/GoCodeAlone/componentkit/modules/configwatcher"
	"github.com/GoCodeAlone/componentkit/modules/eventlogger"
)

// Define static errors
var (
	ErrWatchWithoutConfig = errors.New("--watch needs at least one --config file")
)

// NewDebugContainerCommand creates the debug:container command
func NewDebugContainerCommand(opts *globalOptions) *cobra.Command {
	var (
		watch      bool
		showParams bool
		events     string
	)
	cmd := &cobra.Command{
		Use:   "debug:container",
		Short: "Boot the container and list its service definitions",
		Long: `Boot the container with the given configuration files and list the
service definitions, their tags and every deprecation notice triggered
while compiling.

Examples:
  componentctl debug:container -c config/template_component.yaml --debug
  componentctl debug:container -c config/app.hcl --watch
  componentctl debug:container -c config/app.toml --events structured`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var extra []componentkit.KernelOption
			if events != "" {
				logger, err := eventlogger.New(cmd.ErrOrStderr(), eventlogger.Config{Format: events, Level: eventlogger.LevelDebug})
				if err != nil {
					return err
				}
				extra = append(extra, componentkit.WithObservers(logger))
			}
			kernel, err := opts.newKernel(cmd, extra...)
			if err != nil {
				return err
			}
			if !watch {
				c, err := kernel.Boot(cmd.Context())
				if err != nil {
					return err
				}
				return printContainer(cmd.OutOrStdout(), c, showParams)
			}
			return watchContainer(cmd, kernel, opts.configFiles, showParams)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reboot the container whenever a configuration file changes")
	cmd.Flags().BoolVarP(&showParams, "parameters", "p", false, "Also list container parameters")
	cmd.Flags().StringVar(&events, "events", "", "Log container events to stderr (text, json or structured)")
	return cmd
}

func watchContainer(cmd *cobra.Command, kernel *componentkit.Kernel, files []string, showParams bool) error {
	if len(files) == 0 {
		return ErrWatchWithoutConfig
	}
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd.ErrOrStderr(), true)
	reload := func(ctx context.Context) {
		c, err := kernel.Boot(ctx)
		if err != nil {
			logger.Error("Container boot failed", "error", err)
			return
		}
		if err := printContainer(cmd.OutOrStdout(), c, showParams); err != nil {
			logger.Error("Failed to print container", "error", err)
		}
	}
	w, err := configwatcher.New(files, logger, reload)
	if err != nil {
		return err
	}
	w.Run(ctx)
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printContainer(out io.Writer, c *componentkit.Container, showParams bool) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE ID\tTYPE\tPUBLIC\tTAGS")
	for _, id := range c.DefinitionIDs() {
		def, err := c.Definition(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", id, def.Type, def.Public, strings.Join(def.TagNames(), ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if showParams {
		params := c.Parameters()
		fmt.Fprintln(out)
		tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PARAMETER\tVALUE")
		for _, name := range params.Names() {
			fmt.Fprintf(tw, "%s\t%v\n", name, params[name])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if notices := c.Deprecations(); len(notices) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Deprecations:")
		for _, n := range notices {
			fmt.Fprintf(out, "  - %s\n", n)
		}
	}
	return nil
}
