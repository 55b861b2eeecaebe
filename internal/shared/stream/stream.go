// Package stream provides a lazy, finite, single-pass sequence of byte chunks.
//
// A Stream is fed by a producer goroutine that owns a resource (an open file,
// a child process pipe). The producer runs until it has emitted everything,
// fails, or its context is cancelled. Consumers drain Chunks and must call
// Close on every exit path; Close cancels the producer and waits until it has
// returned, so the resource is released before Close returns.
//
// Example Usage:
//
//	s := stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
//		defer f.Close()
//		...
//	})
//	defer s.Close()
//	for chunk := range s.Chunks() {
//		w.Write(chunk)
//	}
//	if err := s.Err(); err != nil { ... }
package stream

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Emit hands one chunk to the consumer. It returns false once the consumer has
// gone away; producers should stop and return. The consumer owns the chunk
// after Emit returns, so producers must not reuse its backing array.
type Emit func(chunk []byte) bool

// Producer generates the chunks of a stream.
type Producer func(ctx context.Context, emit Emit) error

// Stream is a single-pass chunk sequence.
type Stream struct {
	chunks chan []byte
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

// New starts producer in its own goroutine and returns the stream it feeds.
func New(ctx context.Context, producer Producer) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		chunks: make(chan []byte),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(s.done)
		defer close(s.chunks)

		emit := func(chunk []byte) bool {
			if ctx.Err() != nil {
				return false
			}
			select {
			case s.chunks <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if err := producer(ctx, emit); err != nil && !errors.Is(err, context.Canceled) {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
	}()

	return s
}

// Chunks returns the channel of chunks. It is closed when the producer
// returns.
func (s *Stream) Chunks() <-chan []byte {
	return s.chunks
}

// Next blocks for the next chunk. ok is false once the stream is exhausted.
func (s *Stream) Next() (chunk []byte, ok bool) {
	chunk, ok = <-s.chunks
	return chunk, ok
}

// Err reports the producer's failure, if any. It is only meaningful after
// Chunks has been closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Done is closed after the producer has returned and released its resources.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Close stops the producer and waits for it to exit. It is safe to call more
// than once and after the stream has been fully drained.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		// Unblock a producer stuck on emit without a select on ctx.
		go func() {
			for range s.chunks {
			}
		}()
	})
	<-s.done
	return nil
}

// WriteTo drains the stream into w. The stream is closed afterwards.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	defer s.Close()

	var total int64
	for chunk := range s.chunks {
		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, s.Err()
}

// Collect drains the stream into a single buffer.
func (s *Stream) Collect() ([]byte, error) {
	defer s.Close()

	var out []byte
	for chunk := range s.chunks {
		out = append(out, chunk...)
	}
	return out, s.Err()
}
