package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JIGLE/proman-sub000/internal/bootstrap"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type saftFlags struct {
	year       int
	startMonth int
	endMonth   int
	series     string
}

func (f *saftFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", 0, "fiscal year (required)")
	cmd.Flags().IntVar(&f.startMonth, "start-month", 1, "first month of the period")
	cmd.Flags().IntVar(&f.endMonth, "end-month", 12, "last month of the period")
	cmd.Flags().StringVar(&f.series, "series", "", "invoice series code")
	_ = cmd.MarkFlagRequired("year")
}

func (f *saftFlags) options() saft.ExportOptions {
	return saft.ExportOptions{
		FiscalYear: f.year,
		StartMonth: f.startMonth,
		EndMonth:   f.endMonth,
		SeriesCode: f.series,
	}
}

func newValidateSAFTCmd(app *cli) *cobra.Command {
	var flags saftFlags
	cmd := &cobra.Command{
		Use:   "validate-saft",
		Short: "Check SAF-T PT export options against the configured company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				result := c.SAFT.Validate(flags.options())
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				if !result.Valid {
					return fmt.Errorf("export options are invalid: %d problem(s)", len(result.Errors))
				}
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newExportSAFTCmd(app *cli) *cobra.Command {
	var (
		flags  saftFlags
		user   string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export-saft",
		Short: "Write a SAF-T PT XML file for one owner",
		Example: `  promanctl export-saft --user 6f1c... --year 2026
  promanctl export-saft --user 6f1c... --year 2026 --start-month 1 --end-month 3 -o exports/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			return app.withContainer(cmd.Context(), func(c *bootstrap.Container) error {
				resp, err := c.SAFT.Export(cmd.Context(), userID, flags.options())
				if err != nil {
					return err
				}
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				path := filepath.Join(outDir, resp.FileName)
				if err := os.WriteFile(path, []byte(resp.XML), 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				app.log.Info("SAF-T export written",
					zap.String("path", path),
					zap.Int("invoices", resp.InvoiceCount),
					zap.String("archive_key", resp.ArchiveKey),
				)
				return printJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&user, "user", "", "owner id (required)")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory for the XML file")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
