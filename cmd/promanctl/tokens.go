package main

import (
	"fmt"
	"time"

	"github.com/JIGLE/proman-sub000/internal/bootstrap"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/auth"
	"github.com/spf13/cobra"
)

func newNextNumberCmd(app *cli) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "next-number",
		Short: "Print the number the next invoice of an owner will receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return app.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				number, err := c.Invoices.NextNumber(cmd.Context(), userID)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), number)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newIssueTokenCmd(app *cli) *cobra.Command {
	var (
		user  string
		email string
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign an access token for an owner with the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			token, expiresAt, err := auth.NewJWTService(app.cfg.JWT).GenerateAccessToken(userID, email, ttl)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"access_token": token,
				"token_type":   "Bearer",
				"expires_at":   expiresAt,
			})
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "owner id (required)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime; zero uses the configured expiration")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
