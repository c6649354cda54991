package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/componentkit/feeders"
	"github.com/GoCodeAlone/componentkit/modules/templatecomponent"
)

// NewConfigDumpCommand creates the config:dump command
func NewConfigDumpCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config:dump",
		Short: "Print the normalized template_component configuration",
		Long: `Merge the template_component sections of every configuration file,
normalize them and print the result as YAML. Deprecation notices are
written to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var configs []map[string]any
			for _, path := range opts.configFiles {
				feeder, err := feeders.ForFile(path)
				if err != nil {
					return err
				}
				var raw map[string]any
				if err := feeder.FeedKey(templatecomponent.Alias, &raw); err != nil {
					return err
				}
				if raw != nil {
					configs = append(configs, raw)
				}
			}

			cfg, notices, err := templatecomponent.NormalizeConfigs(configs)
			if err != nil {
				return err
			}
			for _, n := range notices {
				fmt.Fprintf(cmd.ErrOrStderr(), "Deprecation: %s\n", n)
			}

			out, err := yaml.Marshal(map[string]templatecomponent.Config{templatecomponent.Alias: cfg})
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
