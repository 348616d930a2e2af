package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rasnes/inegi-duckdb-framework/load"
	"github.com/rasnes/inegi-duckdb-framework/transform"
	"github.com/spf13/cobra"
)

func newSeriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Inspects the series written by previous runs",
	}
	cmd.AddCommand(newSeriesListCmd())
	cmd.AddCommand(newSeriesShowCmd())
	return cmd
}

func newSeriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the series in the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			tables, err := load.ReadSeriesDir(cfg.Output.Dir, log)
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No series in %s\n", cfg.Output.Dir)
				return nil
			}

			return writeSeriesList(cmd.OutOrStdout(), tables)
		},
	}
}

func newSeriesShowCmd() *cobra.Command {
	var rows int
	var fromDB bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Shows the rows and summary statistics of one series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := initializeConfigAndLogger()
			if err != nil {
				return err
			}

			var table *transform.Table
			if fromDB {
				loader, err := load.Connect(cfg, log)
				if err != nil {
					return err
				}
				if loader == nil {
					return fmt.Errorf("--db needs database.driver to be set")
				}
				defer loader.Close()
				if table, err = loader.ReadTable(args[0]); err != nil {
					return err
				}
			} else {
				tables, err := load.ReadSeriesDir(cfg.Output.Dir, log)
				if err != nil {
					return err
				}
				selected, err := selectTables(tables, args)
				if err != nil {
					return err
				}
				table = selected[0]
			}

			return writeSeriesDetail(cmd.OutOrStdout(), table, rows)
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 10, "number of rows to show, 0 for all")
	cmd.Flags().BoolVar(&fromDB, "db", false, "read the series from the configured database instead of the CSV files")
	return cmd
}

func writeSeriesList(w io.Writer, tables []*transform.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIE\tFILAS\tDESDE\tHASTA\tULTIMO")
	for _, table := range tables {
		first := table.Rows[0]
		last := table.Rows[len(table.Rows)-1]
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			table.Name, len(table.Rows), first.Date, last.Date,
			transform.NullFloat{Value: last.Value, Valid: true})
	}
	return tw.Flush()
}

func writeSeriesDetail(w io.Writer, table *transform.Table, rows int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, record := range transform.Preview([]*transform.Table{table}, rows) {
		fmt.Fprintln(tw, strings.Join(record, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats, err := transform.Summarize(table)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nObservaciones: %d\nMinimo: %g\nMaximo: %g\nPromedio: %g\nCrecimiento: %g (%s%%)\n",
		stats.Count, stats.Min, stats.Max, stats.Mean, stats.Growth, stats.GrowthPct)
	return nil
}

// selectTables returns the tables with the given names, in the order requested. No names means
// every table.
func selectTables(tables []*transform.Table, names []string) ([]*transform.Table, error) {
	if len(names) == 0 {
		return tables, nil
	}

	byName := make(map[string]*transform.Table, len(tables))
	for _, table := range tables {
		byName[table.Name] = table
	}

	selected := make([]*transform.Table, 0, len(names))
	for _, name := range names {
		table, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("series %q not found", name)
		}
		selected = append(selected, table)
	}
	return selected, nil
}
