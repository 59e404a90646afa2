package main

import (
	"github.com/spf13/cobra"

	"github.com/radixpath/radixpath/internal/logging"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Short:   "Validates the configuration and its route table",
		Example: "radixpath validate -c routes.yaml",
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

			cmd.Printf("Configuration is valid (%d routes)\n", r.Len())

			return nil
		},
	}
}
