package cmd

import (
	"fmt"

	"github.com/rasnes/inegi-duckdb-framework/load"
	"github.com/rasnes/inegi-duckdb-framework/report"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [names...]",
		Short: "Exports the selected series, or all of them, to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			tables, err := load.ReadSeriesDir(cfg.Output.Dir, log)
			if err != nil {
				return err
			}
			selected, err := selectTables(tables, args)
			if err != nil {
				return err
			}

			if err := report.ExportWorkbook(selected, out); err != nil {
				log.Error(fmt.Sprintf("Error exporting workbook: %v", err))
				return err
			}
			log.Info("Workbook written", "path", out, "series", len(selected))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "indicadores.xlsx", "output workbook path")
	return cmd
}
