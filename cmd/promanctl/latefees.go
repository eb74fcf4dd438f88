package main

import (
	"fmt"

	appinvoicing "github.com/JIGLE/proman-sub000/internal/application/invoicing"
	"github.com/JIGLE/proman-sub000/internal/bootstrap"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newApplyLateFeesCmd(app *cli) *cobra.Command {
	var (
		user    string
		dryRun  bool
		enabled bool
	)
	cmd := &cobra.Command{
		Use:   "apply-late-fees",
		Short: "Apply the configured late-fee policy to overdue invoices",
		Long: `Apply the configured late-fee policy to pending invoices past their grace
period. Without --user every owner with pending invoices is processed, the
same way the daily scheduler does.`,
		Example: `  # Run the daily job by hand
  promanctl apply-late-fees

  # Show what one owner would be charged
  promanctl apply-late-fees --user 6f1c... --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				policy := c.LateFeePolicy
				if cmd.Flags().Changed("enable") {
					policy.Enabled = enabled
				}
				out := cmd.OutOrStdout()

				if dryRun {
					if user == "" {
						return fmt.Errorf("--dry-run requires --user")
					}
					userID, err := parseUser(user)
					if err != nil {
						return err
					}
					previews, err := c.Invoices.PreviewLateFees(cmd.Context(), userID, policy)
					if err != nil {
						return err
					}
					return printJSON(out, previews)
				}

				if user != "" {
					userID, err := parseUser(user)
					if err != nil {
						return err
					}
					result, err := c.Invoices.ApplyLateFees(cmd.Context(), userID, policy)
					if err != nil {
						return err
					}
					logResult(app, userID, result)
					return printJSON(out, result)
				}

				results, err := c.Invoices.ApplyLateFeesForAllUsers(cmd.Context(), policy)
				if err != nil {
					return err
				}
				for userID, result := range results {
					logResult(app, userID, result)
				}
				return printJSON(out, results)
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner id; empty processes every owner")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview fees without saving (requires --user)")
	cmd.Flags().BoolVar(&enabled, "enable", false, "override the configured enabled flag")
	return cmd
}

func logResult(app *cli, userID uuid.UUID, result *appinvoicing.LateFeeRunResult) {
	app.log.Info("Late fees applied",
		zap.String("user_id", userID.String()),
		zap.Int("applied", len(result.Applied)),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("failed", len(result.Failed)),
		zap.String("total", result.TotalLateFees.StringFixed(2)),
	)
}
