package main

import (
	"github.com/spf13/cobra"

	"github.com/radixpath/radixpath/internal/logging"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Prints the radix tree built from the route table",
		Long: `Prints one line per tree node: priority, max params count, segment, number of
children, registered route (or <>), wildcard child flag and node type.`,
		Example: "radixpath tree -c routes.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cmd, conf)

			r, err := newRouteTable(conf, logging.NewSlogHandler(&logger))
			if err != nil {
				return err
			}

			cmd.Print(r.String())

			return nil
		},
	}
}
