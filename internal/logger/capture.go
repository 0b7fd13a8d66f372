package logger

import (
	"encoding/json"
	"strings"
)

const defaultBufferSize = 1000

// LogEntry is one structured log line as served by the logs endpoint.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Capture is an io.Writer that keeps the most recent zerolog JSON lines.
type Capture struct {
	buffer *RingBuffer[LogEntry]
}

// NewCapture creates a capture holding at most bufferSize entries.
func NewCapture(bufferSize int) *Capture {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Capture{buffer: NewRingBuffer[LogEntry](bufferSize)}
}

// Write implements io.Writer.
func (c *Capture) Write(p []byte) (int, error) {
	entry, err := parseLogEntry(p)
	if err != nil {
		return len(p), nil //nolint:nilerr // malformed lines are not captured
	}
	c.buffer.Push(entry)
	return len(p), nil
}

// GetRecentLogs returns all buffered entries.
func (c *Capture) GetRecentLogs() []LogEntry {
	return c.buffer.GetAll()
}

// Filter returns buffered entries at or above minLevel that belong to
// component. Empty arguments match everything.
func (c *Capture) Filter(minLevel, component string) []LogEntry {
	threshold := parseLevel(minLevel)
	return c.buffer.Filter(func(e LogEntry) bool {
		if component != "" && !strings.EqualFold(e.Component, component) {
			return false
		}
		return minLevel == "" || parseLevel(e.Level) >= threshold
	})
}

func parseLogEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{}

	if ts, ok := raw["time"].(string); ok {
		entry.Timestamp = ts
		delete(raw, "time")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = level
		delete(raw, "level")
	}
	if component, ok := raw["component"].(string); ok {
		entry.Component = component
		delete(raw, "component")
	}
	if msg, ok := raw["message"].(string); ok {
		entry.Message = msg
		delete(raw, "message")
	}

	if len(raw) > 0 {
		entry.Fields = raw
	}
	return entry, nil
}
