package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-contrib/sse"
)

const heartbeatFrame = ": ping\n\n"

// Stream is the SSE-backed Channel. Send is called from job goroutines and
// only enqueues; Serve runs on the connection's handler goroutine and owns
// every write to the response.
type Stream struct {
	id    string
	queue chan string
	done  chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

// NewStream returns a Stream that buffers up to size pending fragments.
func NewStream(id string, size int) *Stream {
	if size <= 0 {
		size = 1
	}
	return &Stream{
		id:    id,
		queue: make(chan string, size),
		done:  make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (s *Stream) ID() string {
	return s.id
}

// Send queues fragment without blocking. It fails with ErrStreamClosed once
// the connection is gone, and with ErrStreamFull when the buffer is
// exhausted; a full stream is closed so the browser reconnects.
func (s *Stream) Send(fragment string) error {
	select {
	case <-s.done:
		return s.closedErr()
	default:
	}
	select {
	case s.queue <- fragment:
		return nil
	case <-s.done:
		return s.closedErr()
	default:
		s.Close(ErrStreamFull)
		return ErrStreamFull
	}
}

// Close marks the stream dead with cause. Only the first cause is kept.
func (s *Stream) Close(cause error) {
	if cause == nil {
		cause = ErrStreamClosed
	}
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.err = cause
		s.mu.Unlock()
		close(s.done)
	})
}

// Done is closed once the stream is dead.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Err returns the close cause, or nil while the stream is open.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Stream) closedErr() error {
	if err := s.Err(); err != nil {
		return err
	}
	return ErrStreamClosed
}

// Serve pumps queued fragments to w as SSE data messages, calling flush
// after each frame, until ctx ends, the stream is closed, or a write fails.
// A positive heartbeat interval adds comment frames between messages. The
// stream is closed when Serve returns. Client disconnects return nil.
func (s *Stream) Serve(ctx context.Context, w io.Writer, flush func(), heartbeat time.Duration) error {
	defer s.Close(ErrStreamClosed)
	if flush == nil {
		flush = func() {}
	}

	var tick <-chan time.Time
	if heartbeat > 0 {
		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			if err := s.Err(); err != nil && !errors.Is(err, ErrStreamClosed) {
				return err
			}
			return nil
		case fragment := <-s.queue:
			if err := writeEvent(w, fragment); err != nil {
				s.Close(err)
				return err
			}
			flush()
		case <-tick:
			if _, err := io.WriteString(w, heartbeatFrame); err != nil {
				err = fmt.Errorf("write heartbeat: %w", err)
				s.Close(err)
				return err
			}
			flush()
		}
	}
}

func writeEvent(w io.Writer, fragment string) error {
	ew := &errWriter{w: w}
	if err := sse.Encode(ew, sse.Event{Data: fragment}); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if ew.err != nil {
		return fmt.Errorf("write event: %w", ew.err)
	}
	return nil
}

// errWriter remembers the first write error; the encoder does not always
// surface it.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
