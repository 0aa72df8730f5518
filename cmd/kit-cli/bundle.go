package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ui-kit-catalog/internal/bundle"
	"ui-kit-catalog/internal/model"
	"ui-kit-catalog/pkg/fsutils"
)

func bundleCmd(c *cli) *cobra.Command {
	var (
		opts model.PackagingOptions
		out  string
	)

	cmd := &cobra.Command{
		Use:   "bundle NAME...",
		Short: "Request a bundle for the named templates and save it",
		Long: `Send one bundle request for the named templates, in the order given,
and write the returned archive to disk.

The file is saved as <app-name>.zip, or trimble-ui-kit.zip without an
app name, unless --out is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requester := bundle.NewRequester(bundle.NewHTTPClient(c.cfg.Service.BaseURL, c.client), c.logger, nil)
			res, err := requester.Fetch(cmd.Context(), args, opts)
			if err != nil {
				return fmt.Errorf("bundle request failed: %w", err)
			}

			path := out
			if path == "" {
				path = filepath.Base(res.Filename)
			}
			if err := fsutils.WriteToFile(path, res.Data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Saved")+fmt.Sprintf(" %s (%d bytes)", path, len(res.Data)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.AppName, "app-name", "", "namespace for the solution, also names the saved file")
	flags.StringVar(&opts.StartupPage, "startup", "", "template used as the startup page")
	flags.BoolVar(&opts.Runnable, "runnable", false, "request a runnable solution instead of plain files")
	flags.StringVarP(&out, "out", "o", "", "output file (default: <app-name>.zip)")
	return cmd
}
