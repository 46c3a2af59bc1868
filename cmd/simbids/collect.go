package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/meigma/simbids/configs"
	"github.com/meigma/simbids/derivatives"
	"github.com/meigma/simbids/layout"
)

func newCollectCommand(a *app) *cobra.Command {
	var (
		specPath      string
		selector      string
		entities      []string
		allowMultiple bool
		db            string
	)
	cmd := &cobra.Command{
		Use:   "collect <bids_dir>",
		Short: "Resolve named derivative queries against a dataset",
		Long: `Index <bids_dir> and run the queries that --selector picks from the query
spec for the file described by --entity. Prints the matches as JSON.`,
		Example: `  simbids collect /tmp/deriv --entity subject=01 --entity session=01
  simbids collect /tmp/raw --selector '$.queries.raw' --entity sub=01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ents, err := parseEntities(entities)
			if err != nil {
				return err
			}
			data := configs.QuerySpec()
			if specPath != "" {
				if data, err = os.ReadFile(specPath); err != nil { //nolint:gosec // user-provided spec path
					return err
				}
			}
			spec, err := derivatives.LoadQuerySpec(data, selector)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			idx, err := layout.Open(ctx, db, layout.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer idx.Close()
			if _, err := idx.Build(ctx, osfs.New(args[0]), "."); err != nil {
				return err
			}

			opts := []derivatives.CollectOption{derivatives.CollectWithLogger(a.logger)}
			if allowMultiple {
				opts = append(opts, derivatives.CollectWithAllowMultiple())
			}
			got, err := derivatives.Collect(ctx, idx, ents, spec, opts...)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(got)
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "Query spec JSON file (default: bundled io_spec.json)")
	cmd.Flags().StringVar(&selector, "selector", derivatives.SelectDerivatives, "JSONPath selecting the named queries")
	cmd.Flags().StringArrayVarP(&entities, "entity", "e", nil, "Entity as key=value (repeatable)")
	cmd.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "Return every match instead of failing")
	cmd.Flags().StringVar(&db, "db", ":memory:", "SQLite database for the layout index")
	return cmd
}

func parseEntities(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid entity %q (want key=value)", pair)
		}
		out[k] = v
	}
	return out, nil
}
