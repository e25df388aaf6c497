package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseCSVTable reads a CSV or TSV file as a single logical table: the first
// record is the header, every following record is a data row. Row numbers
// start at 2 to stay consistent with sheet-based numbering (header on row 1).
func ParseCSVTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	table := Table{Header: namedHeader(records[0])}
	for i, record := range records[1:] {
		table.Rows = append(table.Rows, record)
		table.RowNumbers = append(table.RowNumbers, i+2)
	}
	return table, nil
}
