package pipeline

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/threatcast/internal/forecast"
	"github.com/KaramelBytes/threatcast/internal/manifest"
	"github.com/KaramelBytes/threatcast/internal/normalize"
	"github.com/KaramelBytes/threatcast/internal/series"
)

const dataset = `T25,Region/Country/Area,,Year,Series,Value,Footnotes,Source
894,Zambia,2004,Threatened Species: Total (number),34,,"IUCN Red List"
894,Zambia,2010,Threatened Species: Total (number),62,,"IUCN Red List"
894,Zambia,2015,Threatened Species: Total (number),85,,"IUCN Red List"
894,Zambia,2019,Threatened Species: Total (number),90,,"IUCN Red List"
894,Zambia,2020,Threatened Species: Total (number),102,,"IUCN Red List"
894,Zambia,2021,Threatened Species: Total (number),111,,"IUCN Red List"
894,Zambia,2022,Threatened Species: Total (number),139,Data refers to 2021.,"IUCN Red List"
894,Zambia,2022,Threatened Species: Fungi (number),3,,"IUCN Red List"
148,Chad,2022,Threatened Species: Plants (number),"1,204",,,,"IUCN Red List"
148,Chad
`

func writeDataset(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "ThreatenedSpecies.csv")
	require.NoError(t, os.WriteFile(p, []byte(dataset), 0o644))
	return p
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRun_EndToEnd(t *testing.T) {
	in := writeDataset(t)
	out := filepath.Join(t.TempDir(), "clean", "ThreatenedSpecies_Cleaned.csv")

	res, err := Run(context.Background(), Options{InputPath: in, OutputPath: out, WriteManifest: true, Logger: quiet()})
	require.NoError(t, err)

	assert.Equal(t, 10, res.Cleaned.RowsRead)
	assert.Len(t, res.Cleaned.Records, 9)
	assert.Len(t, res.Cleaned.Skipped, 1)
	assert.Equal(t, 1, res.Series.Excluded)
	assert.Equal(t, 2, res.Series.Len())

	pts, ok := res.Series.Series("Zambia", series.Total)
	require.True(t, ok)
	assert.Len(t, pts, 7)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, "Region/Country/Area,Year,Threatened species,Value,Source,Footnotes", lines[0])
	assert.Equal(t, "Zambia,2022,Threatened Species: Total (number),139,IUCN Red List,Data refers to 2021.", lines[7])
	assert.Equal(t, "Chad,2022,Threatened Species: Plants (number),1204,IUCN Red List,", lines[9])

	run, err := manifest.Load(manifest.PathFor(out))
	require.NoError(t, err)
	assert.Equal(t, res.Run.ID, run.ID)
	assert.Equal(t, 9, run.RowsWritten)
	assert.Equal(t, 1, run.SkipCounts[normalize.SkipFieldCount])
	assert.Equal(t, 2, run.SeriesCount)

	fc, err := forecast.NewService(res.Series, quiet()).Query("Zambia", "Total", 5)
	require.NoError(t, err)
	require.Len(t, fc.Predictions, 5)
	assert.Equal(t, 2023, fc.Predictions[0].Year)
	assert.Equal(t, 2027, fc.Predictions[4].Year)
}

func TestRun_CleanedOutputIsStable(t *testing.T) {
	in := writeDataset(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	_, err := Run(context.Background(), Options{InputPath: in, OutputPath: first, Logger: quiet()})
	require.NoError(t, err)
	res, err := Run(context.Background(), Options{InputPath: first, OutputPath: second, Logger: quiet()})
	require.NoError(t, err)
	assert.Empty(t, res.Cleaned.Skipped)

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	assert.Equal(t, string(a), string(b))
	_, err = os.Stat(manifest.PathFor(first))
	assert.True(t, os.IsNotExist(err), "manifest only written on request")
}

func TestRun_MissingInput(t *testing.T) {
	_, err := Run(context.Background(), Options{InputPath: filepath.Join(t.TempDir(), "missing.csv"), Logger: quiet()})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_RecordsRejectedValues(t *testing.T) {
	p := filepath.Join(t.TempDir(), "species.csv")
	content := "T25,Region/Country/Area,,Year,Series,Value,Footnotes,Source\n" +
		"894,Zambia,2004,Threatened Species: Total (number),34,,IUCN\n" +
		"894,Zambia,2010,Threatened Species: Total (number),n/a,,IUCN\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	out := filepath.Join(t.TempDir(), "clean.csv")

	res, err := Run(context.Background(), Options{InputPath: p, OutputPath: out, WriteManifest: true, Logger: quiet()})
	require.NoError(t, err)
	assert.Len(t, res.Cleaned.Records, 2)
	assert.Equal(t, 1, res.Series.Rejected)
	assert.Equal(t, 1, res.Run.Rejected)

	run, err := manifest.Load(manifest.PathFor(out))
	require.NoError(t, err)
	assert.Equal(t, 1, run.Rejected)
	assert.Equal(t, 0, run.Excluded)
}
