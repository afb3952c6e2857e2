package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LogEntry is one captured log line.
type LogEntry struct {
	Time    time.Time
	Level   slog.Level
	Message string
}

// LogBuffer keeps the last N log entries for the log panel.
// It is safe for concurrent use.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	limit   int
	// oldest is the slot overwritten next once the buffer is full
	oldest int
}

// NewLogBuffer creates a buffer holding at most size entries.
func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{
		entries: make([]LogEntry, 0, size),
		limit:   size,
	}
}

// Add stores entry, evicting the oldest one when full.
func (lb *LogBuffer) Add(entry LogEntry) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.entries) < lb.limit {
		lb.entries = append(lb.entries, entry)
		return
	}
	lb.entries[lb.oldest] = entry
	lb.oldest = (lb.oldest + 1) % lb.limit
}

// GetRecent returns up to maxCount entries, newest first. maxCount <= 0 returns all of them.
func (lb *LogBuffer) GetRecent(maxCount int) []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	n := len(lb.entries)
	if n == 0 {
		return nil
	}
	if maxCount > 0 && maxCount < n {
		n = maxCount
	}

	newest := lb.oldest - 1
	if len(lb.entries) < lb.limit {
		newest = len(lb.entries) - 1
	}

	out := make([]LogEntry, n)
	for i := range out {
		out[i] = lb.entries[(newest-i+len(lb.entries))%len(lb.entries)]
	}
	return out
}

// Clear drops every entry.
func (lb *LogBuffer) Clear() {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries = lb.entries[:0]
	lb.oldest = 0
}

// LogBufferHandler is a slog.Handler that renders records into a LogBuffer.
type LogBufferHandler struct {
	buffer *LogBuffer
	level  slog.Leveler
	// preformatted attributes from WithAttrs, already prefixed
	suffix string
	group  string
}

// NewLogBufferHandler creates a handler writing into buffer at or above level.
func NewLogBufferHandler(buffer *LogBuffer, level slog.Leveler) *LogBufferHandler {
	return &LogBufferHandler{buffer: buffer, level: level}
}

func (h *LogBufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogBufferHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(record.Message)
	sb.WriteString(h.suffix)
	record.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.group, a)
		return true
	})

	h.buffer.Add(LogEntry{Time: record.Time, Level: record.Level, Message: sb.String()})
	return nil
}

func (h *LogBufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	sb.WriteString(h.suffix)
	for _, a := range attrs {
		writeAttr(&sb, h.group, a)
	}

	clone := *h
	clone.suffix = sb.String()
	return &clone
}

func (h *LogBufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

// writeAttr appends " key=value", flattening groups into dotted keys.
func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix, ga)
		}
		return
	}
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(sb, " %s%s=%v", prefix, a.Key, a.Value)
}

var levelLabels = map[slog.Level]string{
	slog.LevelDebug: "DBG",
	slog.LevelInfo:  "INF",
	slog.LevelWarn:  "WRN",
	slog.LevelError: "ERR",
}

// FormatLogEntry renders an entry as "15:04:05 [LVL] message".
func FormatLogEntry(entry LogEntry) string {
	label, ok := levelLabels[entry.Level]
	if !ok {
		label = "???"
	}
	return fmt.Sprintf("%s [%s] %s", entry.Time.Format("15:04:05"), label, entry.Message)
}
