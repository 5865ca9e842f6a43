package reader_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/threatcast/internal/normalize"
	"github.com/KaramelBytes/threatcast/internal/reader"
)

func TestReadFileCSV_RaggedRows(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "species.csv")
	content := "T25,Region/Country/Area,,Year,Series,Value,Footnotes,Source\n" +
		"894,Zambia,2004,Threatened Species: Total (number),34,,\"IUCN\"\n" +
		"894,  Zambia ,2010,Threatened Species: Total (number),\"1,062\",,,,IUCN\n" +
		"short,row\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	tbl, err := reader.ReadFile(p, reader.Options{})
	require.NoError(t, err)
	assert.Equal(t, "species.csv", tbl.Name)
	assert.Len(t, tbl.Header, 8)
	assert.Equal(t, "T25", tbl.Header[0])
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "IUCN", tbl.Rows[0][6])
	assert.Equal(t, "Zambia", tbl.Rows[1][1])
	assert.Equal(t, "1,062", tbl.Rows[1][4])
	assert.Len(t, tbl.Rows[1], 9)
	assert.Equal(t, []string{"short", "row"}, tbl.Rows[2])
}

func TestReadFileCSV_ByteOrderMark(t *testing.T) {
	p := filepath.Join(t.TempDir(), "species.csv")
	content := "\ufeffT25,Region/Country/Area,,Year,Series,Value,Footnotes,Source\n" +
		"894,Zambia,2004,Threatened Species: Total (number),34,,IUCN\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	tbl, err := reader.ReadFile(p, reader.Options{})
	require.NoError(t, err)
	assert.Equal(t, "T25", tbl.Header[0])

	res := normalize.Normalize(tbl, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.True(t, res.Shape.LeadingNoise)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Records, 1)
	assert.Equal(t, normalize.Record{
		Region:   "Zambia",
		Year:     "2004",
		Category: "Threatened Species: Total (number)",
		Value:    "34",
		Source:   "IUCN",
	}, res.Records[0])
}

func TestReadDelimited_TabAndEmpty(t *testing.T) {
	tbl, err := reader.ReadDelimited("x.tsv", strings.NewReader("a\tb\n1\t2\n"), '\t')
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows)

	empty, err := reader.ReadDelimited("empty.csv", strings.NewReader(""), ',')
	require.NoError(t, err)
	assert.Empty(t, empty.Header)
	assert.Empty(t, empty.Rows)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := reader.ReadFile(filepath.Join(t.TempDir(), "nope.csv"), reader.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "species.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]any{"Region/Country/Area", "Year", "Threatened species", "Value", "Source", "Footnotes"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]any{"Zambia", 2004, "Threatened Species: Total (number)", 34, "IUCN"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := reader.ReadFile(path, reader.Options{SheetName: "Data"})
	require.NoError(t, err)
	assert.Equal(t, "Year", tbl.Header[1])
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"Zambia", "2004", "Threatened Species: Total (number)", "34", "IUCN"}, tbl.Rows[0])

	_, err = reader.ReadFile(path, reader.Options{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available sheets")
}
