package load

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/rasnes/inegi-duckdb-framework/constants"
	"github.com/rasnes/inegi-duckdb-framework/transform"
)

// EncodeTable renders a table as CSV with the header Fecha,<name> and no index column.
// Values use the shortest representation that parses back to the same float.
func EncodeTable(table *transform.Table) ([]byte, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fmt.Errorf("received empty table")
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)

	if err := writer.Write([]string{constants.DateColumn, table.Name}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range table.Rows {
		record := []string{row.Date, strconv.FormatFloat(row.Value, 'f', -1, 64)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return buffer.Bytes(), nil
}
