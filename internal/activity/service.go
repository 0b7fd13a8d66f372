// Package activity records what the poster engine did, for display and auditing.
package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slipstream/posterd/internal/database/sqlc"
)

// Service provides activity log functionality.
type Service struct {
	db      *sql.DB
	queries *sqlc.Queries
	logger  zerolog.Logger
}

// NewService creates a new activity service.
func NewService(db *sql.DB, logger *zerolog.Logger) *Service {
	return &Service{
		db:      db,
		queries: sqlc.New(db),
		logger:  logger.With().Str("component", "activity").Logger(),
	}
}

// Add records an entry. Failures are logged and otherwise ignored: the
// activity log never affects the outcome of the operation it describes.
func (s *Service) Add(ctx context.Context, sourceID int64, level Level, eventType EventType, message string, data any) {
	var dataJSON sql.NullString
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			s.logger.Warn().Err(err).Str("eventType", string(eventType)).Msg("failed to encode activity data")
		} else {
			dataJSON = sql.NullString{String: string(bytes), Valid: true}
		}
	}

	_, err := s.queries.CreateActivity(ctx, sqlc.CreateActivityParams{
		EventID:   uuid.NewString(),
		SourceID:  sql.NullInt64{Int64: sourceID, Valid: sourceID > 0},
		Level:     string(level),
		EventType: string(eventType),
		Message:   message,
		Data:      dataJSON,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("eventType", string(eventType)).Msg("failed to record activity")
	}
}

// List lists activity entries with pagination and filtering.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResponse, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 50
	}
	if opts.PageSize > 200 {
		opts.PageSize = 200
	}

	source := sql.NullInt64{Int64: opts.SourceID, Valid: opts.SourceID > 0}

	rows, err := s.queries.ListActivityPaginated(ctx, sqlc.ListActivityPaginatedParams{
		SourceID: source,
		Level:    opts.Level,
		Limit:    int64(opts.PageSize),
		Offset:   int64((opts.Page - 1) * opts.PageSize),
	})
	if err != nil {
		return nil, err
	}

	totalCount, err := s.queries.CountActivity(ctx, sqlc.CountActivityParams{
		SourceID: source,
		Level:    opts.Level,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	totalPages := int(totalCount) / opts.PageSize
	if int(totalCount)%opts.PageSize > 0 {
		totalPages++
	}

	return &ListResponse{
		Items:      entries,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// Cleanup deletes entries older than the retention window.
func (s *Service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format("2006-01-02 15:04:05")
	n, err := s.queries.DeleteActivityBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("pruned activity log")
	}
	return n, nil
}

func rowToEntry(row *sqlc.ActivityLog) *Entry {
	entry := &Entry{
		ID:        row.ID,
		EventID:   row.EventID,
		SourceID:  row.SourceID.Int64,
		Level:     Level(row.Level),
		EventType: EventType(row.EventType),
		Message:   row.Message,
	}
	if row.Data.Valid {
		var data map[string]any
		if err := json.Unmarshal([]byte(row.Data.String), &data); err == nil {
			entry.Data = data
		}
	}
	if row.CreatedAt.Valid {
		entry.CreatedAt = row.CreatedAt.Time.Format(time.RFC3339)
	}
	return entry
}
