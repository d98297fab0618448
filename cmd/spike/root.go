package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	opts := &serveOptions{}

	root := &cobra.Command{
		Use:           "spike",
		Short:         "Serve explicitly registered resources through pluggable body writers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the TOML config file (default spike.toml)")
	opts.bind(root.Flags())

	root.AddCommand(newServeCmd(opts), newRoutesCmd())
	return root
}
