// Package spinner provides a terminal activity indicator with a live status line.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Frames is the animation sequence.
var Frames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

// Spinner redraws "<frame> <message>" on one line until stopped.
type Spinner struct {
	writer  io.Writer
	delay   time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	active  bool
	message string
}

// New creates a stopped spinner. Cancelling ctx stops the animation goroutine.
func New(ctx context.Context, writer io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		writer:  writer,
		delay:   100 * time.Millisecond,
		ctx:     spinnerCtx,
		cancel:  cancel,
		message: message,
	}
}

// Start begins the animation; calling it on a running spinner does nothing.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true

	s.wg.Add(1)
	go s.run()
}

// Stop ends the animation and clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	if IsTerminal(s.writer) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// IsActive returns whether the spinner is currently running
func (s *Spinner) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Message returns the current status line.
func (s *Spinner) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// SetMessage replaces the status line; the next frame shows it.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintf(s.writer, "\r%s %s", Frames[frame%len(Frames)], s.Message())
		}
	}
}

// IsTerminal reports whether w is a terminal (and not redirected).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
