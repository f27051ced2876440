package event

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
)

// flusher is implemented by buffered writers that need an explicit flush to
// make a line visible to the reader.
type flusher interface {
	Flush() error
}

// Emitter serializes events as newline-delimited JSON onto a writer. It is
// safe for concurrent use; the signal handler emits through the same instance
// as the run loop.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes one event as a single JSON line and flushes it. Serialization
// failures are logged and swallowed; the event stream must never carry a
// partially written line.
func (e *Emitter) Emit(t Type, content string, details map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := json.Marshal(Event{Type: t, Content: content, Details: details})
	if err != nil {
		log.Error().Err(err).Str("event_type", string(t)).Msg("failed to marshal event")
		return
	}

	data = append(data, '\n')
	if _, err := e.w.Write(data); err != nil {
		log.Error().Err(err).Str("event_type", string(t)).Msg("failed to write event")
		return
	}
	if f, ok := e.w.(flusher); ok {
		_ = f.Flush()
	}
}
