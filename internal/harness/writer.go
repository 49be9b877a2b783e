package harness

import (
	"io"
	"sync"
)

// swapWriter is the explicit output handle handed to the interpreter. The
// harness swaps a fresh buffer in for exactly one file's execution and the
// returned restore func puts the previous sink back on every exit path.
type swapWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSwapWriter(w io.Writer) *swapWriter {
	return &swapWriter{w: w}
}

func (s *swapWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Swap installs w as the current sink and returns a func restoring the
// previous one.
func (s *swapWriter) Swap(w io.Writer) (restore func()) {
	s.mu.Lock()
	prev := s.w
	s.w = w
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.w = prev
		s.mu.Unlock()
	}
}
