// Command storefront is the command line client of the clothing storefront.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	token   string
	backend string
	debug   bool

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Clothing storefront client: catalog, cart and AI helpers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		logger, err = logging.New(debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config.Load: %w", err)
		}
		if backend != "" {
			cfg.Backend = backend
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		logger.Debug("configuration loaded",
			zap.String("env", cfg.Env),
			zap.String("backend", cfg.Backend),
			zap.String("textgen_transport", cfg.TextgenTransport))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "ID token, or user id with local auth; empty signs in anonymously")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: postgres, firestore or memory (overrides STORE_BACKEND)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(sloganCmd, sizeCmd, productsCmd, cartCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
