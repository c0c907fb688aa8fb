package table_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muzykantov/geo-data-pipeline/internal/table"
)

func TestHeaderAndRecords(t *testing.T) {
	withHeader := table.Table{Name: "Probes", HasHeaderRow: true, Rows: [][]string{{"ID", "Symbol"}, {"1", "A"}}}
	assert.Equal(t, []string{"ID", "Symbol"}, withHeader.Header())
	assert.Equal(t, [][]string{{"1", "A"}}, withHeader.Records())

	heading := table.Table{Name: "Heading", Rows: [][]string{{"Normalization", "none"}}}
	assert.Nil(t, heading.Header())
	assert.Equal(t, heading.Rows, heading.Records())
}

func TestWriteIsTabDelimited(t *testing.T) {
	var buf bytes.Buffer
	tbl := table.Table{Name: "Samples", HasHeaderRow: true, Rows: [][]string{{"Sample", "Group"}, {"S1", ""}}}
	require.NoError(t, tbl.Write(&buf))
	assert.Equal(t, "Sample\tGroup\nS1\t\n", buf.String())
}

func TestWriteFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tbl := table.Table{Name: "Controls", HasHeaderRow: true, Rows: [][]string{{"Probe_Id", "Array_Address_Id"}, {"ILMN_1", "10"}, {"ILMN_2", "20"}}}

	path, err := tbl.WriteFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Controls.tsv"), path)

	loaded, err := table.ReadFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, tbl, loaded)
}

func TestWriteFileEmptyTable(t *testing.T) {
	dir := t.TempDir()
	path, err := table.Table{Name: "Empty", HasHeaderRow: true}.WriteFile(dir)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestReadFileToleratesRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Ragged.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\tb\tc\n1\t2\n"), 0o644))

	loaded, err := table.ReadFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, "Ragged", loaded.Name)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2"}}, loaded.Rows)
}

func TestWriteFileKeepsQuotesAndSpaces(t *testing.T) {
	dir := t.TempDir()
	tbl := table.Table{Name: "Probes", HasHeaderRow: true, Rows: [][]string{
		{"ID", "Definition"},
		{"1", `"quoted"`},
		{"2", " leading space"},
		{"3", `says "hi"`},
	}}

	path, err := tbl.WriteFile(dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID\tDefinition\n1\t\"quoted\"\n2\t leading space\n3\tsays \"hi\"\n", string(data))

	loaded, err := table.ReadFile(path, true)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows, loaded.Rows)
}
