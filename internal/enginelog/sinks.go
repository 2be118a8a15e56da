package enginelog

import (
	"context"
	"io"
	"log"
	"sync"
)

// ConsoleSink writes one formatted line per event, mirroring the
// teacher's sinks.ConsoleSink.
type ConsoleSink struct {
	logger *log.Logger
}

// NewConsoleSink constructs a console sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{logger: log.New(w, "", log.LstdFlags)}
}

func (s *ConsoleSink) Write(event Event) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Printf("[%s] tick=%d severity=%d actor=%d target=%d %s",
		event.Category, event.Tick, event.Severity, event.ActorID, event.TargetID, event.Message)
	return nil
}

func (s *ConsoleSink) Close(context.Context) error { return nil }

// MemorySink buffers events in-process for test assertions, mirroring
// the teacher's sinks.MemorySink.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemorySink) Close(context.Context) error { return nil }

// Events returns a copy of every event recorded so far.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = s.events[:0]
}
