package posterqueue

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRetroLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "retro")
	now := time.Date(2026, 3, 1, 4, 5, 6, 0, time.UTC)

	path, err := NewRetroLogFile(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "retro-20260301-040506.csv"), path)

	require.NoError(t, AppendFailure(path, FailureRow{
		Category: "film", MediaType: "movie", Provider: "tmdb", Query: "Heat, the movie", Reason: "no tmdb match",
	}))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"category", "mediaType", "provider", "query", "reason"}, rows[0])
	assert.Equal(t, []string{"film", "movie", "tmdb", "Heat, the movie", "no tmdb match"}, rows[1])

	_, err = NewRetroLogFile(dir, now)
	assert.Error(t, err, "an existing log is never truncated")
}

func TestAppendFailure_MissingFile(t *testing.T) {
	err := AppendFailure(filepath.Join(t.TempDir(), "nope.csv"), FailureRow{Reason: "x"})
	assert.Error(t, err)
}
