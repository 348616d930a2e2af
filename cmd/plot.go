package cmd

import (
	"fmt"

	"github.com/rasnes/inegi-duckdb-framework/load"
	"github.com/rasnes/inegi-duckdb-framework/report"
	"github.com/spf13/cobra"
)

func newPlotCmd() *cobra.Command {
	var out string
	var title string
	var normalize bool

	cmd := &cobra.Command{
		Use:   "plot [names...]",
		Short: "Draws the selected series, or all of them, as a line chart",
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

			if err := report.PlotSeries(selected, out, report.PlotOptions{Title: title, Normalize: normalize}); err != nil {
				log.Error(fmt.Sprintf("Error plotting series: %v", err))
				return err
			}
			log.Info("Chart written", "path", out, "series", len(selected))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "indicadores.png", "output image path")
	cmd.Flags().StringVar(&title, "title", "Indicadores INEGI", "chart title")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "scale every series to [0,1]")
	return cmd
}
