// Package dataset reads the mock claims CSV shown on the data page and scored
// in batch by the CLI.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/Veraticus/claimguard/internal/prediction"
)

// DefaultHeaders are shown when the data file does not exist.
var DefaultHeaders = []string{"Patient UUID", "CDT Code", "Amount", "Date", "Notes"}

// Table is a CSV header row plus data rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Load reads at most maxRows data rows from path. maxRows <= 0 reads every row.
// A missing file yields the default headers and no rows.
func Load(path string, maxRows int) (Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Table{Headers: append([]string(nil), DefaultHeaders...)}, nil
		}
		return Table{}, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f, maxRows)
}

// Read parses CSV from r. Rows may have differing field counts.
func Read(r io.Reader, maxRows int) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("failed to read dataset header: %w", err)
	}

	table := Table{Headers: headers}
	for maxRows <= 0 || len(table.Rows) < maxRows {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read dataset row %d: %w", len(table.Rows)+1, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// columnAliases maps normalized header names to record fields.
var columnAliases = map[string]string{
	"patient uuid":   "patient",
	"patient_uuid":   "patient",
	"patient id":     "patient",
	"cdt code":       "code",
	"cdt_code":       "code",
	"procedure code": "code",
	"amount":         "amount",
	"date":           "date",
	"notes":          "notes",
}

// Inputs maps each row onto a record input for modelType, matching columns by header name.
func (t Table) Inputs(modelType string) []prediction.RecordInput {
	index := make(map[string]int)
	for i, h := range t.Headers {
		if field, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, seen := index[field]; !seen {
				index[field] = i
			}
		}
	}

	get := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	inputs := make([]prediction.RecordInput, 0, len(t.Rows))
	for _, row := range t.Rows {
		inputs = append(inputs, prediction.RecordInput{
			ModelType:     modelType,
			PatientID:     get(row, "patient"),
			ProcedureCode: get(row, "code"),
			Amount:        get(row, "amount"),
			Date:          get(row, "date"),
			Notes:         get(row, "notes"),
		})
	}
	return inputs
}
