package model

import "time"

// LogKind classifies an activity log entry; it doubles as the CSS class suffix on the dashboard
type LogKind string

const (
	LogInfo    LogKind = "info"
	LogSuccess LogKind = "success"
	LogWarning LogKind = "warning"
	LogError   LogKind = "error"
)

// LogEntry is a single line of the activity log
type LogEntry struct {
	Time    string  `json:"time"` // HH:MM:SS
	Message string  `json:"message"`
	Type    LogKind `json:"type"`
}

// MemoryRecord captures one completed cycle
type MemoryRecord struct {
	Cycle     int64            `json:"cycle"`
	Session   string           `json:"session"`
	Timestamp time.Time        `json:"timestamp"`
	Situation string           `json:"situation"`
	Action    ActionSuggestion `json:"action"`
	Goal      string           `json:"goal"`
	Source    DecisionSource   `json:"source"`
}

// Status is the control surface snapshot of the run loop
type Status struct {
	Active   bool   `json:"active"`
	LogCount int    `json:"log_count"`
	Goal     string `json:"goal"`
	Cycle    int64  `json:"cycle"`
	Session  string `json:"session,omitempty"`
}

// Health is the machine readable health snapshot
type Health struct {
	Status        string    `json:"status"` // healthy, stopped
	Timestamp     time.Time `json:"timestamp"`
	LogsCount     int       `json:"logs_count"`
	MemoryEntries int       `json:"memory_entries"`
	Redis         string    `json:"redis,omitempty"` // ok, unavailable; empty when no mirror
}
