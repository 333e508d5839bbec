// Package history keeps the per-session log of answered questions.
package history

import (
	"context"
	"sync"
	"time"

	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/pkg/events"
)

// Entry is one answered question. Entries are never modified once appended.
type Entry struct {
	SessionID    string    `json:"session_id"`
	Tag          string    `json:"tag,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	QuestionID   string    `json:"question_id"`
	QuestionText string    `json:"question_text"`
	AnswerID     string    `json:"answer_id"`
	AnswerText   string    `json:"answer_text"`
}

// Event wraps the entry for the event bus.
func (e Entry) Event() events.Event {
	return events.BaseEvent{
		Type: events.TypeAnswerRecorded,
		Data: map[string]interface{}{
			"session_id":    e.SessionID,
			"tag":           e.Tag,
			"timestamp":     e.Timestamp.Format(time.RFC3339Nano),
			"question_id":   e.QuestionID,
			"question_text": e.QuestionText,
			"answer_id":     e.AnswerID,
			"answer_text":   e.AnswerText,
		},
		OccurredAt: e.Timestamp,
	}
}

// Sink receives every appended entry. Sinks run synchronously on the append path,
// so they should hand off and return quickly.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// PublisherSink forwards entries to an event publisher.
type PublisherSink struct {
	Publisher events.Publisher
}

func (s PublisherSink) Record(ctx context.Context, entry Entry) error {
	return s.Publisher.Publish(ctx, entry.Event())
}

// Recorder is the append-only log of one session.
type Recorder struct {
	mu      sync.RWMutex
	entries []Entry
	sinks   []Sink
	logger  logger.ILogger
}

func NewRecorder(log logger.ILogger, sinks ...Sink) *Recorder {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Recorder{sinks: sinks, logger: log}
}

// Append stores entry and fans it out. Sink failures are logged and never returned.
func (r *Recorder) Append(ctx context.Context, entry Entry) {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()

	for _, sink := range r.sinks {
		if err := sink.Record(ctx, entry); err != nil {
			r.logger.Warn("HISTORY", "Failed to forward history entry", map[string]interface{}{
				"session_id":  entry.SessionID,
				"question_id": entry.QuestionID,
				"error":       err.Error(),
			})
		}
	}
}

// Entries returns the log in append order. A non-empty tag keeps only entries with that tag.
func (r *Recorder) Entries(tag string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if tag == "" || e.Tag == tag {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear drops the log. Sinks are not notified.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Restore replaces the log with entries without notifying sinks.
func (r *Recorder) Restore(entries []Entry) {
	r.mu.Lock()
	r.entries = append([]Entry(nil), entries...)
	r.mu.Unlock()
}
