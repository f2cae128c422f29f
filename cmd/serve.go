package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/budu/mu-action/api/rest"
	"github.com/budu/mu-action/pkg/logger"
)

var (
	serveAddress string
	serveConfig  string
)

// serveCmd is the serve subcommand.
var serveCmd = &cobra.Command{
	Use:   "serve <actions.yaml>",
	Short: "Serve the actions of an action file over a REST API",
	Example: `  # Serve on the default address
  mu-action serve actions.yaml

  # Custom address
  mu-action serve actions.yaml --address :9090

  # Server settings from a config file
  mu-action serve actions.yaml --config server.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: serveActions,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "server config file (YAML)")
}

func serveActions(cmd *cobra.Command, args []string) error {
	iv, err := loadInvoker(args[0])
	if err != nil {
		return err
	}

	cfg := rest.DefaultConfig()
	if serveConfig != "" {
		cfg, err = rest.LoadConfig(serveConfig)
		if err != nil {
			return err
		}
	}
	if serveAddress != "" {
		cfg.Address = serveAddress
	}

	server := rest.NewServer(iv, cfg)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving %d actions on %s", iv.Catalog().Count(), cfg.Address)
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
