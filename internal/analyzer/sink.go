package analyzer

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nao1215/kakusu/internal/model"
)

// ProgressFunc receives progress events. It is called from a single
// goroutine, one event at a time, in emission order.
type ProgressFunc func(model.ProgressEvent)

// progressSink delivers events to a ProgressFunc without blocking the sender.
type progressSink struct {
	fn      ProgressFunc
	events  chan model.ProgressEvent
	done    chan struct{}
	dropped atomic.Int64
	logger  *slog.Logger
}

func newProgressSink(fn ProgressFunc, buffer int, logger *slog.Logger) *progressSink {
	s := &progressSink{
		fn:     fn,
		events: make(chan model.ProgressEvent, buffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	go s.run()
	return s
}

func (s *progressSink) run() {
	defer close(s.done)
	for ev := range s.events {
		s.deliver(ev)
	}
}

func (s *progressSink) deliver(ev model.ProgressEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("progress callback panicked", "panic", r, "pattern", ev.Pattern)
		}
	}()
	s.fn(ev)
}

// emit queues ev, or drops it if the buffer is full.
func (s *progressSink) emit(ev model.ProgressEvent) {
	select {
	case s.events <- ev:
	default:
		s.dropped.Add(1)
	}
}

// close stops accepting events and waits up to grace for the queue to drain.
func (s *progressSink) close(grace time.Duration) {
	close(s.events)
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-s.done:
	case <-timer.C:
		s.logger.Warn("progress callback is still running after the run finished")
	}
	if n := s.dropped.Load(); n > 0 {
		s.logger.Warn("progress events dropped", "count", n)
	}
}
