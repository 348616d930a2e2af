package cmd

import (
	"fmt"

	"github.com/rasnes/inegi-duckdb-framework/pipeline"
	"github.com/rasnes/inegi-duckdb-framework/utils"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var indicators string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetches the configured indicators and writes one artifact per series",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			p, err := pipeline.NewPipeline(cfg, log)
			if err != nil {
				log.Error(fmt.Sprintf("Error creating pipeline: %v", err))
				return err
			}
			defer p.Close()

			if ids := utils.ParseList(indicators); len(ids) > 0 {
				p.Indicators = ids
			}

			summary, err := p.Run()
			if err != nil {
				log.Error(fmt.Sprintf("Error running pipeline: %v", err))
				return err
			}

			log.Info(fmt.Sprintf("Run completed. %d of %d series written to %s, %d skipped",
				summary.Processed, summary.Total, cfg.Output.Dir, summary.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&indicators, "indicators", "", "comma separated indicator ids, overrides inegi.indicators")
	return cmd
}
