package report

import (
	"fmt"
	"sort"

	"github.com/rasnes/inegi-duckdb-framework/constants"
	"github.com/rasnes/inegi-duckdb-framework/transform"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type PlotOptions struct {
	Title string
	// Normalize rescales every series to [0,1] so that indicators in different units share an axis.
	Normalize bool
}

// PlotSeries draws one line per table and saves the chart; the image format follows the
// extension of path. The x axis comes from each table's timeline. When the tables do not all
// share a tier, every series is drawn against its row index.
func PlotSeries(tables []*transform.Table, path string, opts PlotOptions) error {
	if len(tables) == 0 {
		return fmt.Errorf("no series to plot")
	}

	timelines := make([]*transform.Timeline, len(tables))
	for i, table := range tables {
		timelines[i] = transform.NewTimeline(table.Dates())
	}
	tier := commonTier(timelines)

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = constants.DateColumn
	p.Y.Label.Text = "Valor"
	if opts.Normalize {
		p.Y.Label.Text = "Valor normalizado"
	}
	if tier == transform.TierDate {
		p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	}
	p.Add(plotter.NewGrid())

	var lines []interface{}
	for i, table := range tables {
		points := seriesPoints(table, timelines[i], tier, opts.Normalize)
		if len(points) == 0 {
			continue
		}
		lines = append(lines, table.Name, points)
	}
	if len(lines) == 0 {
		return fmt.Errorf("no plottable points in %d series", len(tables))
	}

	if err := plotutil.AddLinePoints(p, lines...); err != nil {
		return fmt.Errorf("error adding series to chart: %w", err)
	}

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("error saving chart to %s: %w", path, err)
	}
	return nil
}

func commonTier(timelines []*transform.Timeline) transform.Tier {
	tier := timelines[0].Tier
	for _, timeline := range timelines[1:] {
		if timeline.Tier != tier {
			return transform.TierOrdinal
		}
	}
	return tier
}

func seriesPoints(table *transform.Table, timeline *transform.Timeline, tier transform.Tier, normalize bool) plotter.XYs {
	values := table.Values()
	if normalize {
		values = transform.Normalize(values)
	}

	points := make(plotter.XYs, 0, len(values))
	for i, value := range values {
		x := float64(i)
		if timeline.Tier == tier {
			if !timeline.Valid[i] {
				continue
			}
			x = timeline.Keys[i]
		}
		points = append(points, plotter.XY{X: x, Y: value})
	}

	sort.Slice(points, func(a, b int) bool { return points[a].X < points[b].X })
	return points
}
