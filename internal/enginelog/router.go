package enginelog

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Sink is a single log destination.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// NamedSink pairs a sink with a name for lookup (Router.SinkByName).
type NamedSink struct {
	Name string
	Sink Sink
}

// Config controls buffering and severity filtering.
type Config struct {
	BufferSize      int
	MinimumSeverity Severity
}

// DefaultConfig matches the teacher's logging.DefaultConfig defaults,
// scaled down for a single-process simulation rather than a networked
// game server.
func DefaultConfig() Config {
	return Config{BufferSize: 256, MinimumSeverity: SeverityInfo}
}

// RouterStats exposes the router's lifetime counters.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// Router fans events out to every configured sink without ever blocking
// the caller: a full queue increments a dropped counter instead of
// applying backpressure to the tick pipeline.
type Router struct {
	cfg      Config
	queue    chan Event
	sinks    []*sinkWorker
	fallback *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
	once   sync.Once

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
}

// NewRouter constructs a Router and starts its dispatch goroutine plus
// one worker goroutine per sink.
func NewRouter(cfg Config, named []NamedSink) *Router {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:      cfg,
		queue:    make(chan Event, cfg.BufferSize),
		fallback: log.New(os.Stderr, "[enginelog] ", log.LstdFlags),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, n := range named {
		if n.Sink == nil {
			continue
		}
		r.sinks = append(r.sinks, newSinkWorker(n.Name, n.Sink, cfg.BufferSize, r.fallback))
	}
	r.start()
	return r
}

func (r *Router) start() {
	r.once.Do(func() {
		r.wg.Add(1)
		go func() {
			defer func() {
				for _, w := range r.sinks {
					close(w.events)
				}
				r.wg.Done()
			}()
			for {
				select {
				case <-r.ctx.Done():
					r.drain()
					return
				case event := <-r.queue:
					r.forward(event)
				}
			}
		}()
		for _, w := range r.sinks {
			r.wg.Add(1)
			go func(w *sinkWorker) {
				defer r.wg.Done()
				w.run()
			}(w)
		}
	})
}

func (r *Router) drain() {
	for {
		select {
		case event := <-r.queue:
			r.forward(event)
		default:
			return
		}
	}
}

func (r *Router) forward(event Event) {
	if event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	r.eventsTotal.Add(1)
	for _, w := range r.sinks {
		w.enqueue(event)
	}
}

// Publish enqueues event for dispatch, dropping it silently (but
// counted) if the router's queue is full. Callers on the tick's hot path
// should check MinimumSeverityEnabled before building an Event's Fields
// map, so the allocation cost of a filtered-out debug line is never
// paid.
func (r *Router) Publish(event Event) {
	if r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.droppedTotal.Add(1)
	}
}

// MinimumSeverityEnabled reports whether sev would pass the router's
// filter, letting callers skip building an Event entirely.
func (r *Router) MinimumSeverityEnabled(sev Severity) bool {
	return r != nil && sev >= r.cfg.MinimumSeverity
}

// Close stops dispatch, drains the queue, and closes every sink.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, w := range r.sinks {
		if err := w.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats returns the router's lifetime counters.
func (r *Router) Stats() RouterStats {
	return RouterStats{EventsTotal: r.eventsTotal.Load(), DroppedTotal: r.droppedTotal.Load()}
}

// SinkByName returns a registered sink, or nil.
func (r *Router) SinkByName(name string) Sink {
	for _, w := range r.sinks {
		if w.name == name {
			return w.sink
		}
	}
	return nil
}

type sinkWorker struct {
	name     string
	sink     Sink
	events   chan Event
	fallback *log.Logger
}

func newSinkWorker(name string, sink Sink, buffer int, fallback *log.Logger) *sinkWorker {
	if buffer <= 0 {
		buffer = 32
	}
	return &sinkWorker{name: name, sink: sink, events: make(chan Event, buffer), fallback: fallback}
}

func (w *sinkWorker) enqueue(event Event) {
	select {
	case w.events <- event:
	default:
		w.fallback.Printf("sink %s backlog full, dropping event category=%s", w.name, event.Category)
	}
}

func (w *sinkWorker) run() {
	for event := range w.events {
		if err := w.sink.Write(event); err != nil {
			w.fallback.Printf("sink %s failed: %v", w.name, err)
		}
	}
}
