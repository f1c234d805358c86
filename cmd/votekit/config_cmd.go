package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mggg/votekit/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the service configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Load and validate the configuration, then exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := config.NewLoader(flagConfig).Load(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
				return nil
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Print the effective configuration as YAML",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.NewLoader(flagConfig).Load()
				if err != nil {
					return err
				}
				out, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			},
		},
	)
	return cmd
}
