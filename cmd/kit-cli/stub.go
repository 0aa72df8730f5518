package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ui-kit-catalog/internal/catalog"
	"ui-kit-catalog/internal/devstub"
	"ui-kit-catalog/internal/generator"
	"ui-kit-catalog/internal/model"
	"ui-kit-catalog/internal/storage"
)

func stubCmd(c *cli) *cobra.Command {
	var (
		port string
		file string
	)

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local template and packaging service",
		Long: `Serve GET /api/Template/PlatformTemplates and POST /api/Package/Bundle
locally. Bundles hold placeholder files laid out like the real ones.

Point the server at it with --base-url http://localhost:<port>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates := catalog.Fallback()
			if file != "" {
				var err error
				if templates, err = readFallback(file); err != nil {
					return err
				}
			}

			stub := devstub.New(templates, generator.DefaultGeneratorConfig(), c.logger)
			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           stub.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "%s serving %d templates on http://localhost:%s\n", successStyle.Render("Stub"), len(templates), port)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8090", "port to listen on")
	cmd.Flags().StringVarP(&file, "file", "f", "", "serve templates from a JSON or YAML file")
	return cmd
}

func readFallback(path string) ([]model.Template, error) {
	store, err := storage.NewCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return store.ReadAll()
}
