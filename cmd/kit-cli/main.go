package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ui-kit-catalog/internal/config"
	"ui-kit-catalog/internal/logging"
)

// cli carries what every subcommand needs once flags are parsed.
type cli struct {
	v          *viper.Viper
	configFile string

	cfg    *config.Config
	logger *slog.Logger
	client *http.Client
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	c.client = &http.Client{Timeout: cfg.Service.Timeout}
	return nil
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	cmd := &cobra.Command{
		Use:   "kit-cli",
		Short: "Browse the UI kit catalog and fetch bundles from the terminal",
		Long: `kit-cli talks to the same template service as the web UI.

Examples:
  kit-cli list                              # Show every template and its files
  kit-cli list --file catalog.yaml          # Show a local catalog file
  kit-cli bundle LoginPage --runnable --app-name Contoso
  kit-cli stub --port 8090                  # Serve a local packaging service`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (yaml, toml or json)")
	flags.String("base-url", config.DefaultBaseURL, "template service base URL")
	flags.Duration("timeout", 0, "timeout for service calls (default from config)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	c.v.SetDefault("log.level", "warn")
	for key, name := range map[string]string{
		"service.base_url": "base-url",
		"service.timeout":  "timeout",
		"log.level":        "log-level",
	} {
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(
		listCmd(c),
		bundleCmd(c),
		stubCmd(c),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
