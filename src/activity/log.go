package activity

import (
	"time"

	"minebot/pkg/ring"
	"minebot/src/model"

	"github.com/rs/zerolog"
)

const (
	// LogCapacity is the maximum number of entries kept by the activity log
	LogCapacity = 100
	timeLayout  = "15:04:05"
)

// Log is the bounded activity log shown on the dashboard. Every entry is
// also echoed to the structured logger.
type Log struct {
	entries *ring.Buffer[model.LogEntry]
	logger  zerolog.Logger
	now     func() time.Time
}

// NewLog creates an activity log that echoes entries to logger
func NewLog(logger zerolog.Logger) *Log {
	return &Log{
		entries: ring.New[model.LogEntry](LogCapacity),
		logger:  logger,
		now:     time.Now,
	}
}

// Append stamps and stores a message. It never fails; once the log holds
// LogCapacity entries the oldest one is evicted.
func (l *Log) Append(message string, kind model.LogKind) model.LogEntry {
	entry := model.LogEntry{
		Time:    l.now().Format(timeLayout),
		Message: message,
		Type:    kind,
	}
	l.entries.Push(entry)
	l.echo(entry)
	return entry
}

func (l *Log) echo(entry model.LogEntry) {
	var event *zerolog.Event
	switch entry.Type {
	case model.LogError:
		event = l.logger.Error()
	case model.LogWarning:
		event = l.logger.Warn()
	default:
		event = l.logger.Info()
	}
	event.Str("kind", string(entry.Type)).Msg(entry.Message)
}

// Info appends an info entry
func (l *Log) Info(message string) { l.Append(message, model.LogInfo) }

// Success appends a success entry
func (l *Log) Success(message string) { l.Append(message, model.LogSuccess) }

// Warning appends a warning entry
func (l *Log) Warning(message string) { l.Append(message, model.LogWarning) }

// Error appends an error entry
func (l *Log) Error(message string) { l.Append(message, model.LogError) }

// Recent returns up to n newest entries, oldest first
func (l *Log) Recent(n int) []model.LogEntry {
	if n <= 0 {
		return []model.LogEntry{}
	}
	return l.entries.Last(n)
}

// All returns every entry, oldest first
func (l *Log) All() []model.LogEntry {
	return l.entries.All()
}

// Len returns the number of entries
func (l *Log) Len() int {
	return l.entries.Len()
}

// Clear empties the log
func (l *Log) Clear() {
	l.entries.Clear()
}
