package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rasnes/inegi-duckdb-framework/config"
	"github.com/rasnes/inegi-duckdb-framework/extract"
	"github.com/rasnes/inegi-duckdb-framework/load"
	"github.com/rasnes/inegi-duckdb-framework/transform"
)

const (
	StatusCSVOK = "CSV OK"
	StatusSQLOK = "SQL OK"
)

type EnvelopeFetcher interface {
	FetchEnvelope(ids []string) (*extract.Envelope, error)
}

type Pipeline struct {
	Fetcher EnvelopeFetcher
	Loader  load.TableLoader // nil when database persistence is disabled
	// Connect opens the database once a run has data to persist. Leaving it nil with a nil
	// Loader means CSV only.
	Connect    func() (load.TableLoader, error)
	Catalog    transform.Catalog
	Logger     *slog.Logger
	Options    transform.Options
	OutputDir  string
	Indicators []string
	connErr    error
}

func NewPipeline(config *config.Config, logger *slog.Logger) (*Pipeline, error) {
	httpClient, err := extract.NewInegiClient(config, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating INEGI HTTP client: %w", err)
	}

	catalog, err := transform.NewCatalog(&config.Inegi)
	if err != nil {
		return nil, fmt.Errorf("error building indicator catalog: %w", err)
	}

	return &Pipeline{
		Fetcher: httpClient,
		Connect: func() (load.TableLoader, error) {
			return load.Connect(config, logger)
		},
		Catalog:    catalog,
		Logger:     logger,
		Options:    transform.Options{Round: config.Output.Round},
		OutputDir:  config.Output.Dir,
		Indicators: config.IndicatorIDs(),
	}, nil
}

func (p *Pipeline) Close() {
	if p.Loader == nil {
		return
	}
	if err := p.Loader.Close(); err != nil {
		p.Logger.Error("Error closing database", "error", err)
	}
}

type SeriesResult struct {
	Indicator string
	Name      string
	Path      string
	Rows      int
	Checksum  uint64
	CSVStatus string
	SQLStatus string
	// SkipReason is set when no table could be built for the series.
	SkipReason error
	// Replaces is the indicator that used the same name earlier in the run. Its artifacts
	// were overwritten by this series.
	Replaces string
}

type Summary struct {
	Total       int
	Processed   int
	Skipped     int
	CSVFailures int
	SQLFailures int
	Results     []SeriesResult
}

// Run fetches every configured indicator and processes the reply. Without an envelope nothing
// is written, not even the output directory.
func (p *Pipeline) Run() (*Summary, error) {
	envelope, err := p.Fetcher.FetchEnvelope(p.Indicators)
	if err != nil {
		return nil, fmt.Errorf("error fetching INEGI indicators: %w", err)
	}

	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating output directory %s: %w", p.OutputDir, err)
	}
	p.openLoader()

	return p.ProcessSeries(envelope), nil
}

// openLoader connects on first use. A failed connection is not fatal: every series then gets
// an SQL error status and is still written as CSV.
func (p *Pipeline) openLoader() {
	if p.Loader != nil || p.Connect == nil {
		return
	}
	loader, err := p.Connect()
	if err != nil {
		p.connErr = err
		p.Logger.Error("Database unavailable, writing CSV files only", "error", err)
		return
	}
	p.connErr = nil
	p.Loader = loader
}

// ProcessSeries builds and persists a table per series. It never stops early: series without
// usable data are skipped and persistence failures are recorded in the result.
func (p *Pipeline) ProcessSeries(envelope *extract.Envelope) *Summary {
	summary := &Summary{Total: len(envelope.Series)}
	// Names are compared case-insensitively, as file systems and SQL identifiers may be.
	written := make(map[string]string)

	for _, series := range envelope.Series {
		result := SeriesResult{Indicator: series.Indicator}

		table, err := transform.BuildTable(series, p.Catalog, p.Options)
		if err != nil {
			result.SkipReason = err
			summary.Skipped++
			summary.Results = append(summary.Results, result)
			p.Logger.Warn("Skipping series", "indicator", series.Indicator, "reason", err)
			continue
		}

		summary.Processed++
		result.Name = table.Name
		result.Rows = len(table.Rows)

		key := strings.ToLower(table.Name)
		if previous, ok := written[key]; ok {
			result.Replaces = previous
			p.Logger.Warn("Series name already used in this run, overwriting its artifacts",
				"indicator", series.Indicator,
				"name", table.Name,
				"previous_indicator", previous,
			)
		}
		written[key] = series.Indicator

		path, checksum, err := load.WriteSeriesCSV(p.OutputDir, table)
		if err != nil {
			result.CSVStatus = fmt.Sprintf("CSV Error: %v", err)
			summary.CSVFailures++
		} else {
			result.CSVStatus = StatusCSVOK
			result.Path = path
			result.Checksum = checksum
		}

		if p.Loader != nil {
			if err := p.Loader.ReplaceTable(table); err != nil {
				result.SQLStatus = fmt.Sprintf("SQL Error: %v", err)
				summary.SQLFailures++
			} else {
				result.SQLStatus = StatusSQLOK
			}
		} else if p.connErr != nil {
			result.SQLStatus = fmt.Sprintf("SQL Error: %v", p.connErr)
			summary.SQLFailures++
		}

		p.Logger.Info("Series processed",
			"indicator", series.Indicator,
			"name", table.Name,
			"rows", result.Rows,
			"csv", result.CSVStatus,
			"sql", result.SQLStatus,
			"checksum", fmt.Sprintf("%016x", result.Checksum),
		)
		summary.Results = append(summary.Results, result)
	}

	p.Logger.Info("INEGI run finished",
		"series", summary.Total,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"csv_failures", summary.CSVFailures,
		"sql_failures", summary.SQLFailures,
	)
	return summary
}
