package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ui-kit-catalog/internal/catalog"
	"ui-kit-catalog/internal/storage"
)

func listCmd(c *cli) *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog templates with their file trees",
		Long: `Load the catalog once, with the same fallback rules as the web UI,
and print every template with its dependency tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var source catalog.Source = catalog.NewHTTPSource(c.cfg.Service.BaseURL, c.client)
			if file != "" {
				store, err := storage.NewCatalogFile(file)
				if err != nil {
					return err
				}
				source = catalog.StoreSource{Store: store}
			}

			opts := []catalog.Option{catalog.WithLogger(c.logger)}
			if c.cfg.Catalog.FallbackFile != "" {
				fallback, err := readFallback(c.cfg.Catalog.FallbackFile)
				if err != nil {
					return err
				}
				opts = append(opts, catalog.WithFallback(fallback))
			}

			templates := catalog.NewLoader(source, opts...).Load(cmd.Context())

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(templates)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCatalog(templates))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read the catalog from a JSON or YAML file instead of the service")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}
