package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/research-links/pkg/app"
	"github.com/wadjakorntonsri/research-links/pkg/config"
	"github.com/wadjakorntonsri/research-links/pkg/logging"
	"go.uber.org/zap"
)

// openFunc builds the application for a command run.
type openFunc func(cfg *config.Config, logger *zap.Logger) (*app.App, error)

type cli struct {
	open openFunc
	cfg  *config.Config
	app  *app.App
}

func main() {
	if err := newRootCmd(app.New).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	c := &cli{open: open}

	root := &cobra.Command{
		Use:          "research-links",
		Short:        "Manage research links from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg == nil {
				c.cfg = config.Load()
			}
			logger, err := logging.New(c.cfg.AppEnv, c.cfg.LogLevel)
			if err != nil {
				return err
			}
			a, err := c.open(c.cfg, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			defer c.app.Logger.Sync()
			return c.app.Close()
		},
	}

	root.AddCommand(
		c.exportCmd(),
		c.importCmd(),
		c.ingestCmd(),
		c.statsCmd(),
		c.backupCmd(),
	)
	return root
}
