package transform

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Tier int

const (
	TierDate Tier = iota
	TierYear
	TierOrdinal
)

func (t Tier) String() string {
	switch t {
	case TierDate:
		return "date"
	case TierYear:
		return "year"
	default:
		return "ordinal"
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01",
	"2006/01",
	"2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// Timeline gives each label of a series a sortable position. Key holds Unix seconds for
// TierDate, the year for TierYear and the row index for TierOrdinal. Rows whose label could
// not be read under the chosen tier have Valid false.
type Timeline struct {
	Tier  Tier
	Keys  []float64
	Valid []bool
}

// NewTimeline tries full date parsing first. If no label parses it falls back to the first
// four-digit year of each label, and if that also fails to the ordinal position.
func NewTimeline(labels []string) *Timeline {
	n := len(labels)

	dated := &Timeline{Tier: TierDate, Keys: make([]float64, n), Valid: make([]bool, n)}
	anyDate := false
	for i, label := range labels {
		if ts, ok := parseDate(label); ok {
			dated.Keys[i] = float64(ts.Unix())
			dated.Valid[i] = true
			anyDate = true
		}
	}
	if anyDate {
		return dated
	}

	yearly := &Timeline{Tier: TierYear, Keys: make([]float64, n), Valid: make([]bool, n)}
	anyYear := false
	for i, label := range labels {
		match := yearPattern.FindString(label)
		if match == "" {
			continue
		}
		year, err := strconv.Atoi(match)
		if err != nil {
			continue
		}
		yearly.Keys[i] = float64(year)
		yearly.Valid[i] = true
		anyYear = true
	}
	if anyYear {
		return yearly
	}

	ordinal := &Timeline{Tier: TierOrdinal, Keys: make([]float64, n), Valid: make([]bool, n)}
	for i := range labels {
		ordinal.Keys[i] = float64(i)
		ordinal.Valid[i] = true
	}
	return ordinal
}

func parseDate(label string) (time.Time, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, label); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
