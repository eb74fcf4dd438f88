package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JIGLE/proman-sub000/internal/bootstrap"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/config"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand
type cli struct {
	logLevel string
	cfg      *config.Config
	log      *zap.Logger
}

func newRootCmd() *cobra.Command {
	app := &cli{}
	root := &cobra.Command{
		Use:   "promanctl",
		Short: "Proman maintenance commands",
		Long: `promanctl runs the same invoicing, late-fee and SAF-T services as the
HTTP server, directly against the configured database.

Configuration is read from config.toml, .env and PROMAN_* environment
variables, exactly like the server.`,
		Version:       bootstrap.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			level := cfg.Log.Level
			if app.logLevel != "" {
				level = app.logLevel
			}
			app.cfg = cfg
			app.log = logger.New(logger.Options{
				Level:   level,
				Format:  "console",
				Output:  "stderr",
				Service: "promanctl",
			})
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if app.log != nil {
				_ = app.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newApplyLateFeesCmd(app),
		newExportSAFTCmd(app),
		newValidateSAFTCmd(app),
		newNextNumberCmd(app),
		newIssueTokenCmd(app),
	)
	return root
}

// withContainer builds the service container for the duration of fn
func (a *cli) withContainer(ctx context.Context, fn func(*bootstrap.Container) error) error {
	c, err := bootstrap.New(ctx, a.cfg, a.log, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(context.Background()); cerr != nil {
			a.log.Warn("Error while releasing resources", zap.Error(cerr))
		}
	}()
	return fn(c)
}

func parseUser(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --user %q: %w", raw, err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
