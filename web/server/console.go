package server

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warning", "error"
}

// consoleCore is a zapcore.Core that forwards log entries to a browser
// console channel. Sends never block; entries are dropped when the channel
// is full.
type consoleCore struct {
	zapcore.LevelEnabler
	fields      []zapcore.Field
	consoleChan chan<- ConsoleMessage
}

// NewConsoleCore creates a core sending entries at or above level to
// consoleChan
func NewConsoleCore(level zapcore.LevelEnabler, consoleChan chan<- ConsoleMessage) zapcore.Core {
	return &consoleCore{LevelEnabler: level, consoleChan: consoleChan}
}

func (c *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(c.fields[:len(c.fields):len(c.fields)], fields...)
	return &clone
}

func (c *consoleCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *consoleCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if c.consoleChan == nil {
		return nil
	}

	select {
	case c.consoleChan <- ConsoleMessage{
		Message:   formatEntry(entry.Message, c.fields, fields),
		Timestamp: entry.Time,
		Level:     consoleLevel(entry.Level),
	}:
	default:
		// Channel full, skip (don't block)
	}
	return nil
}

func (c *consoleCore) Sync() error { return nil }

// formatEntry renders a message followed by its fields as sorted key=value pairs
func formatEntry(message string, fieldSets ...[]zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, fields := range fieldSets {
		for _, f := range fields {
			f.AddTo(enc)
		}
	}
	if len(enc.Fields) == 0 {
		return message
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(message)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, enc.Fields[k])
	}
	return b.String()
}

func consoleLevel(level zapcore.Level) string {
	switch {
	case level >= zapcore.ErrorLevel:
		return "error"
	case level == zapcore.WarnLevel:
		return "warning"
	case level == zapcore.DebugLevel:
		return "debug"
	default:
		return "info"
	}
}
