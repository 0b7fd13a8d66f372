package posterqueue

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var retroHeader = []string{"category", "mediaType", "provider", "query", "reason"}

// FailureRow is one line of a retro log.
type FailureRow struct {
	Category  string
	MediaType string
	Provider  string
	Query     string
	Reason    string
}

var retroMu sync.Mutex

// NewRetroLogFile creates dir/retro-<timestamp>.csv with its header row and
// returns the path.
func NewRetroLogFile(dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create retro log dir: %w", err)
	}

	name := fmt.Sprintf("retro-%s.csv", now.UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	retroMu.Lock()
	defer retroMu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create retro log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(retroHeader); err != nil {
		return "", fmt.Errorf("failed to write retro log header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write retro log header: %w", err)
	}
	return path, nil
}

// AppendFailure appends row to the retro log at path.
func AppendFailure(path string, row FailureRow) error {
	retroMu.Lock()
	defer retroMu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open retro log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{row.Category, row.MediaType, row.Provider, row.Query, row.Reason}); err != nil {
		return fmt.Errorf("failed to append retro log: %w", err)
	}
	w.Flush()
	return w.Error()
}
