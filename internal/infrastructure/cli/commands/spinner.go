package commands

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner shows progress on a terminal while providers are consulted.
type Spinner struct {
	frames   []string
	interval time.Duration
	label    string
	writer   io.Writer
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{
		frames:   []string{"|", "/", "-", "\\"},
		interval: 100 * time.Millisecond,
		label:    label,
		writer:   w,
		stopChan: make(chan struct{}),
	}
}

// startSpinner starts a spinner on w when w is a terminal. The returned
// stop func is always safe to call.
func startSpinner(w io.Writer, label string) func() {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return func() {}
	}
	s := NewSpinner(w, label)
	s.Start()
	return s.Stop
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for idx := 0; ; idx++ {
			fmt.Fprintf(s.writer, "\r%s %s", s.frames[idx%len(s.frames)], s.label)
			select {
			case <-s.stopChan:
				// Clear the spinner line
				fmt.Fprintf(s.writer, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation; repeated calls are no-ops.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}
