package transform

import (
	"fmt"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rasnes/inegi-duckdb-framework/config"
)

// Catalog maps indicator identifiers to display names. It is built once and only read afterwards.
type Catalog map[string]string

type catalogRecord struct {
	ID   string `csv:"id"`
	Name string `csv:"name"`
}

// NewCatalog builds the catalog from the configured indicators and, when inegi.catalog_file is
// set, from that CSV file (columns id,name). Names from the config take precedence.
func NewCatalog(cfg *config.InegiConfig) (Catalog, error) {
	catalog := Catalog{}

	if cfg.CatalogFile != "" {
		fromFile, err := LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		for id, name := range fromFile {
			catalog[id] = name
		}
	}

	for _, indicator := range cfg.Indicators {
		name := strings.TrimSpace(indicator.Name)
		if name == "" {
			continue
		}
		catalog[strings.TrimSpace(indicator.ID)] = name
	}

	return catalog, nil
}

// LoadCatalogFile reads an id,name CSV file. Rows without id or name are ignored.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file %s: %w", path, err)
	}

	var records []catalogRecord
	if err := csvutil.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error decoding catalog file %s: %w", path, err)
	}

	catalog := make(Catalog, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record.ID)
		name := strings.TrimSpace(record.Name)
		if id == "" || name == "" {
			continue
		}
		catalog[id] = name
	}
	return catalog, nil
}

func (c Catalog) Name(id string) (string, bool) {
	name, ok := c[id]
	return name, ok
}
