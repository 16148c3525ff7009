package sheets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ParseCSV decodes exported tab text into rows of trimmed cells. Quoted fields
// may contain the delimiter, and a doubled quote inside a quoted field is a
// literal quote. Blank lines are skipped. The header line is returned as the
// first row.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse tab csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		row := Row{Number: line, Cells: trimAll(record)}
		if row.blank() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// dataRows drops the header row.
func dataRows(rows []Row) []Row {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = trimCell(cell)
	}
	return out
}
