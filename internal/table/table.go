package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/muzykantov/geo-data-pipeline/internal/fileutil"
)

const (
	// Ext is the file extension of every table written by the pipeline.
	Ext = ".tsv"
	// Delimiter separates cells within a row.
	Delimiter = "\t"
)

// Table is a materialized section: a name and a list of tab-split rows.
// When HasHeaderRow is set the first row names the columns.
type Table struct {
	Name         string
	HasHeaderRow bool
	Rows         [][]string
}

// FileName returns "<Name>.tsv".
func (t Table) FileName() string {
	return t.Name + Ext
}

// Header returns the column names, or nil for headerless tables.
func (t Table) Header() []string {
	if !t.HasHeaderRow || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Records returns the data rows that follow the header row.
func (t Table) Records() [][]string {
	if t.HasHeaderRow && len(t.Rows) > 0 {
		return t.Rows[1:]
	}
	return t.Rows
}

// Write encodes the table as tab-delimited rows without an index column.
// Cells are written verbatim; no quoting is applied.
func (t Table) Write(w io.Writer) error {
	buffered := bufio.NewWriter(w)
	for _, row := range t.Rows {
		if _, err := buffered.WriteString(strings.Join(row, Delimiter) + "\n"); err != nil {
			return fmt.Errorf("encode table %s: %w", t.Name, err)
		}
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("encode table %s: %w", t.Name, err)
	}
	return nil
}

// WriteFile writes the table to dir/<Name>.tsv, replacing any previous file
// atomically. It returns the destination path.
func (t Table) WriteFile(dir string) (string, error) {
	dest := filepath.Join(dir, t.FileName())
	if err := fileutil.WriteAtomic(dest, t.Write); err != nil {
		return "", err
	}
	return dest, nil
}

// ReadFile loads a table written by WriteFile. The table name is the file
// base name without extension.
func ReadFile(path string, hasHeaderRow bool) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer file.Close()

	rows, err := readRows(bufio.NewReader(file))
	if err != nil {
		return Table{}, fmt.Errorf("decode table %s: %w", path, err)
	}
	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	return Table{Name: name, HasHeaderRow: hasHeaderRow, Rows: rows}, nil
}

// readRows splits each non-empty line on tabs, the inverse of Write.
func readRows(r *bufio.Reader) ([][]string, error) {
	var rows [][]string
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line != "" {
			rows = append(rows, strings.Split(line, Delimiter))
		}
		if err != nil {
			return rows, nil
		}
	}
}
