package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/bootstrap"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/auth"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		batchSize int
		companyID string
		dryRun    bool
		audit     bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pass",
		Long: `Link every active invoice to the proforma it fulfills, then recompute
the status of every open proforma from its vehicle coverage.

An interrupted pass still prints the partial report and exits non-zero.
With --audit the integrity audit runs after a completed pass and both
reports are printed together.`,
		Example: `  # Full pass
  reconcile run

  # Preview the writes of one company without performing them
  reconcile run --company 0b5e7... --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := reconciliation.RunOptions{BatchSize: batchSize, DryRun: dryRun}
			if companyID != "" {
				id, err := uuid.Parse(companyID)
				if err != nil {
					return fmt.Errorf("invalid --company: %w", err)
				}
				opts.CompanyID = &id
			}

			return withContainer(cmd, root, func(ctx context.Context, c *bootstrap.Container) (any, error) {
				report, err := c.Service.Run(ctx, opts)
				if report == nil {
					return nil, err
				}
				if err != nil || !audit {
					return report, err
				}
				anomalies, err := c.Auditor.Audit(ctx)
				return runWithAudit{Run: report, Audit: anomalies}, err
			})
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Entities loaded per page (default: configured batch size)")
	cmd.Flags().StringVar(&companyID, "company", "", "Restrict the pass to one company id")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the changes without writing them")
	cmd.Flags().BoolVar(&audit, "audit", false, "Run the integrity audit after the pass")
	return cmd
}

// runWithAudit is the output of run --audit
type runWithAudit struct {
	Run   *reconciliation.Report        `json:"run"`
	Audit *reconciliation.AnomalyReport `json:"audit,omitempty"`
}

func newAuditCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report dangling references without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, root, func(ctx context.Context, c *bootstrap.Container) (any, error) {
				report, err := c.Auditor.Audit(ctx)
				if report == nil {
					return nil, err
				}
				return report, err
			})
		},
	}
}

func newExplainCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain the matching decision for a single entity",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "invoice <id>",
			Short: "Show which proforma an invoice would be linked to and why",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid invoice id: %w", err)
				}
				return withContainer(cmd, root, func(ctx context.Context, c *bootstrap.Container) (any, error) {
					explanation, err := c.Inspector.ExplainInvoice(ctx, id)
					if err != nil {
						return nil, err
					}
					return explanation, nil
				})
			},
		},
		&cobra.Command{
			Use:   "proforma <id>",
			Short: "Show the vehicle coverage and derived status of a proforma",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid proforma id: %w", err)
				}
				return withContainer(cmd, root, func(ctx context.Context, c *bootstrap.Container) (any, error) {
					explanation, err := c.Inspector.ExplainProforma(ctx, id)
					if err != nil {
						return nil, err
					}
					return explanation, nil
				})
			},
		},
		&cobra.Command{
			Use:   "vehicle <plate>",
			Short: "Show whether a vehicle is covered by an invoice",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, root, func(ctx context.Context, c *bootstrap.Container) (any, error) {
					info, err := c.Inspector.VehicleCoverage(ctx, args[0])
					if err != nil {
						return nil, err
					}
					return info, nil
				})
			},
		},
	)
	return cmd
}

// issuedToken is the output of token
type issuedToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Long: `Sign a service token with the configured auth.secret. Send it as
"Authorization: Bearer <token>" to the /api/v1 endpoints of the server.`,
		Example: `  reconcile token --subject nightly-cron --ttl 720h`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			tokens, err := auth.NewTokenService(cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize token service: %w", err)
			}
			token, expiresAt, err := tokens.Issue(subject, ttl)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), issuedToken{
				Token:     token,
				TokenType: "Bearer",
				Subject:   subject,
				ExpiresAt: expiresAt,
			}, root.pretty)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Name of the service or operator the token is for")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.token_ttl)")
	return cmd
}
