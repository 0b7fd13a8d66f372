package health

import "time"

// Status is the health state of one check.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Category groups related checks.
type Category string

const (
	CategoryDatabase  Category = "database"
	CategoryStorage   Category = "storage"
	CategoryProviders Category = "providers"
	CategoryQueue     Category = "queue"
)

// Item is the result of one check.
type Item struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Message  string   `json:"message,omitempty"`
}

// Report is the outcome of a full health run.
type Report struct {
	Status    Status    `json:"status"`
	Items     []Item    `json:"items"`
	CheckedAt time.Time `json:"checkedAt"`
}

// worse returns the more severe of a and b.
func worse(a, b Status) Status {
	rank := map[Status]int{StatusOK: 0, StatusWarning: 1, StatusError: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
