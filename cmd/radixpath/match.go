package main

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/radixpath/radixpath"
	"github.com/radixpath/radixpath/internal/logging"
)

type matchResult struct {
	Path     string            `json:"path"`
	Outcome  string            `json:"outcome"`
	Route    string            `json:"route,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Location string            `json:"location,omitempty"`
	Status   int               `json:"status,omitempty"`
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match PATH...",
		Short: "Resolves paths against the route table",
		Long: `Resolves each path against the route table and prints one json document per path,
holding the matched route, the captured parameters and the outcome (resolved,
redirect, fallback or no_match).`,
		Example: "radixpath match -c routes.yaml /cmd/go/vet /src/main.go",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cmd, conf)

			r, err := newRouteTable(conf, logging.NewSlogHandler(&logger))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, path := range args {
				m := r.Lookup(path)

				res := matchResult{
					Path:    path,
					Outcome: m.Kind.String(),
					Route:   m.Route,
				}

				if len(m.Params) > 0 {
					res.Params = make(map[string]string, len(m.Params))
					for k, v := range m.Params.Map().All() {
						res.Params[k] = v
					}
				}

				switch m.Kind {
				case radixpath.Redirect:
					res.Location = radixpath.FixTrailingSlash(path)
				case radixpath.Resolved, radixpath.Fallback:
					res.Status = statusOf(m.Handler.Status)
				}

				if err = enc.Encode(res); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
