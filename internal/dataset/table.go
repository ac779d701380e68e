package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Table is the attribute table keyed by region identifier.
type Table struct {
	Path     string
	Columns  []string // upper-cased column names in file order
	IDColumn int      // index of the identifier column
	Rows     []Row

	index map[string]int
}

// Row is one record of the attribute table.
type Row struct {
	ID    string
	Cells []string // one per column, same order as Table.Columns
}

// upper normalizes a column name. Casers are stateful, so one is created
// per call.
func upper(s string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

// LoadTable reads the attribute table at path. CSV files need a header row;
// XLSX workbooks are read from their first sheet. Column names are
// upper-cased. When no column is called idColumn, the first column is
// renamed to it.
func LoadTable(path, idColumn string) (*Table, error) {
	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path)
	default:
		return nil, loadErr(path, "unsupported table format %q", ext)
	}
	if err != nil {
		var dle *DataLoadError
		if errors.As(err, &dle) {
			return nil, err
		}
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return buildTable(path, idColumn, records)
}

func buildTable(path, idColumn string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, loadErr(path, "no header row")
	}
	t := &Table{Path: path, IDColumn: -1, index: make(map[string]int)}
	want := upper(idColumn)
	for i, h := range records[0] {
		name := upper(h)
		t.Columns = append(t.Columns, name)
		if name == want {
			t.IDColumn = i
		}
	}
	if len(t.Columns) == 0 {
		return nil, loadErr(path, "empty header row")
	}
	if t.IDColumn < 0 {
		log.Printf("dataset: %s has no %s column, using first column %q", filepath.Base(path), want, t.Columns[0])
		t.Columns[0] = want
		t.IDColumn = 0
	}

	for n, rec := range records[1:] {
		line := n + 2
		if blank(rec) {
			continue
		}
		if len(rec) != len(t.Columns) {
			return nil, loadErr(path, "row %d has %d fields, header has %d", line, len(rec), len(t.Columns))
		}
		cells := make([]string, len(rec))
		for i, c := range rec {
			cells[i] = strings.TrimSpace(c)
		}
		id := cells[t.IDColumn]
		if prev, dup := t.index[id]; dup {
			return nil, loadErr(path, "duplicate identifier %q in rows %d and %d", id, prev+2, line)
		}
		t.index[id] = len(t.Rows)
		t.Rows = append(t.Rows, Row{ID: id, Cells: cells})
	}
	if len(t.Rows) == 0 {
		return nil, loadErr(path, "no data rows")
	}
	return t, nil
}

// Lookup returns the row with the given identifier.
func (t *Table) Lookup(id string) (Row, bool) {
	i, ok := t.index[id]
	if !ok {
		return Row{}, false
	}
	return t.Rows[i], true
}

// IDs returns every identifier in row order.
func (t *Table) IDs() []string {
	ids := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		ids[i] = r.ID
	}
	return ids
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// readXLSX returns the rows of the first sheet. Trailing empty cells are
// trimmed by excelize, so short rows are padded to the header width.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	width := len(rows[0])
	for i, row := range rows[1:] {
		if len(row) < width && !blank(row) {
			padded := make([]string, width)
			copy(padded, row)
			rows[i+1] = padded
		}
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
