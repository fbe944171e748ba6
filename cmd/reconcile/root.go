package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/josewalke/generador-de-factura-sub001/internal/bootstrap"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const closeTimeout = 10 * time.Second

var version = "dev"

type rootOptions struct {
	logLevel string
	pretty   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Link invoices to proformas and keep proforma statuses consistent",
		Long: `reconcile runs reconciliation passes and integrity audits against the
invoicing database and explains single matching decisions.

Configuration is read from an optional .env file, config.toml and RECON_*
environment variables, the same way the server reads it. Results are
printed as JSON on stdout; logs go to stderr.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", true, "Indent JSON output")

	cmd.AddCommand(newRunCmd(opts), newAuditCmd(opts), newExplainCmd(opts), newTokenCmd(opts))
	return cmd
}

// withContainer loads configuration, wires the services and runs fn with a
// context cancelled on SIGINT or SIGTERM
func withContainer(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, c *bootstrap.Container) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      opts.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{AllowInMemoryReports: true})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := c.Close(closeCtx); err != nil {
			log.Warn("Failed to release resources", zap.Error(err))
		}
	}()

	result, runErr := fn(ctx, c)
	if result != nil {
		if err := writeJSON(cmd.OutOrStdout(), result, opts.pretty); err != nil {
			return err
		}
	}
	return runErr
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
