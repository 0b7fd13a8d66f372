package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Provider reports whether a metadata provider has credentials.
type Provider interface {
	Name() string
	IsConfigured() bool
}

// QueueStats reports the poster queue fill level.
type QueueStats interface {
	Count() int
}

// Folder is a directory the service writes to.
type Folder struct {
	Name string
	Path string
}

// Service runs the health checks.
type Service struct {
	db        Pinger
	folders   []Folder
	providers []Provider
	queue     QueueStats
	capacity  int
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService creates a health service. queue may be nil.
func NewService(db Pinger, folders []Folder, providers []Provider, queue QueueStats, capacity int, logger *zerolog.Logger) *Service {
	return &Service{
		db:        db,
		folders:   folders,
		providers: providers,
		queue:     queue,
		capacity:  capacity,
		logger:    logger.With().Str("component", "health").Logger(),
		now:       time.Now,
	}
}

// Check runs every check and returns the combined report.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{Status: StatusOK, CheckedAt: s.now().UTC()}
	add := func(item Item) {
		report.Items = append(report.Items, item)
		report.Status = worse(report.Status, item.Status)
	}

	db := Item{ID: "database", Category: CategoryDatabase, Name: "SQLite", Status: StatusOK}
	if err := s.db.PingContext(ctx); err != nil {
		db.Status, db.Message = StatusError, err.Error()
		s.logger.Warn().Err(err).Msg("Database ping failed")
	}
	add(db)

	for _, f := range s.folders {
		add(s.checkFolder(f))
	}

	configured := 0
	for _, p := range s.providers {
		item := Item{ID: "provider-" + p.Name(), Category: CategoryProviders, Name: p.Name(), Status: StatusOK}
		if p.IsConfigured() {
			configured++
		} else {
			item.Status, item.Message = StatusWarning, "not configured"
		}
		add(item)
	}
	if len(s.providers) > 0 && configured == 0 {
		report.Status = StatusError
	}

	if s.queue != nil {
		item := Item{ID: "queue", Category: CategoryQueue, Name: "Poster queue", Status: StatusOK}
		if s.capacity > 0 && s.queue.Count()*10 >= s.capacity*9 {
			item.Status, item.Message = StatusWarning, "queue is nearly full"
		}
		add(item)
	}

	return report
}

// checkFolder reports whether f exists as a directory the service can write
// poster files into.
func (s *Service) checkFolder(f Folder) Item {
	item := Item{ID: "folder-" + f.Name, Category: CategoryStorage, Name: f.Name, Status: StatusOK}
	if err := folderWritable(f.Path); err != nil {
		item.Status, item.Message = StatusError, err.Error()
		s.logger.Warn().Err(err).Str("folder", f.Name).Str("path", f.Path).Msg("Folder check failed")
	}
	return item
}

func folderWritable(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("path does not exist: %s", path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("permission denied: %s", path)
	case err != nil:
		return fmt.Errorf("cannot access path: %w", err)
	case !info.IsDir():
		return fmt.Errorf("path is not a directory: %s", path)
	}

	marker := filepath.Join(path, ".health-"+uuid.NewString()[:8]+".jpg")
	if err := os.WriteFile(marker, []byte("health"), 0o644); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("folder is read-only: %s", path)
		}
		return fmt.Errorf("cannot write to folder: %w", err)
	}
	if err := os.Remove(marker); err != nil {
		return fmt.Errorf("cannot remove marker file: %w", err)
	}
	return nil
}
