package main

import (
	"reflect"

	"github.com/spf13/cobra"

	"github.com/bjaus/dispatch"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the registered routes and their writers as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := newRegistry()
			if err != nil {
				return err
			}
			routes := reg.Routes()
			return dispatch.YAMLWriter().WriteTo(cmd.OutOrStdout(), routes, reflect.TypeOf(routes), "")
		},
	}
}
