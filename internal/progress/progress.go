// Package progress implements the lossy, best-effort progress event bus
// shared by every pipeline stage. A losing send must never stall the
// pipeline: Emit always returns immediately, whether or not a consumer was
// listening.
package progress

import "github.com/asimov-platform/rdf-dataset-packer/pkg/types"

// Event is one of ReaderProgress, PrepareProgress or PublishProgress.
type Event interface{}

// Sink is a non-blocking, best-effort progress event channel. The zero
// value is not usable; construct with NewSink.
type Sink struct {
	events chan Event
}

// NewSink returns a Sink backed by a 4096-event buffered channel. Emit
// never blocks on it, so a slow or absent UI consumer never backpressures
// the core stages; events arriving while the buffer is full are dropped.
func NewSink() *Sink {
	return &Sink{events: make(chan Event, 4096)}
}

// Emit enqueues an event without blocking. If the buffer is full the event
// is silently dropped; progress reporting is explicitly best-effort.
func (s *Sink) Emit(e Event) {
	if s == nil {
		return
	}
	select {
	case s.events <- e:
	default:
	}
}

// EmitReader is a typed convenience wrapper around Emit.
func (s *Sink) EmitReader(e types.ReaderProgress) { s.Emit(e) }

// EmitPrepare is a typed convenience wrapper around Emit.
func (s *Sink) EmitPrepare(e types.PrepareProgress) { s.Emit(e) }

// EmitPublish is a typed convenience wrapper around Emit.
func (s *Sink) EmitPublish(e types.PublishProgress) { s.Emit(e) }

// Events exposes the receive side for a UI collaborator to drain.
func (s *Sink) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.events
}

// Close closes the backing channel. Callers must ensure no further Emit
// calls occur afterward.
func (s *Sink) Close() {
	if s == nil {
		return
	}
	close(s.events)
}
