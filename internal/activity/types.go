package activity

// Level is the severity of an activity entry.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// EventType identifies what happened.
type EventType string

const (
	EventTypePosterFetched  EventType = "poster_fetched"
	EventTypePosterReused   EventType = "poster_reused"
	EventTypePosterFailed   EventType = "poster_failed"
	EventTypePosterSkipped  EventType = "poster_skipped"
	EventTypeJobFailed      EventType = "job_failed"
	EventTypeRetroStarted   EventType = "retro_started"
	EventTypePostersCleared EventType = "posters_cleared"
)

// Entry represents an activity log entry.
type Entry struct {
	ID        int64          `json:"id"`
	EventID   string         `json:"eventId"`
	SourceID  int64          `json:"sourceId,omitempty"`
	Level     Level          `json:"level"`
	EventType EventType      `json:"eventType"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

// ListOptions contains options for listing activity.
type ListOptions struct {
	SourceID int64
	Level    string
	Page     int
	PageSize int
}

// ListResponse contains paginated activity results.
type ListResponse struct {
	Items      []*Entry `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalCount int64    `json:"totalCount"`
	TotalPages int      `json:"totalPages"`
}
