package commands

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, "Asking providers")
	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop()

	if !strings.Contains(out.String(), "Asking providers") {
		t.Errorf("spinner never drew its label: %q", out.String())
	}
	if !strings.HasSuffix(out.String(), "\r\033[K") {
		t.Error("spinner should clear its line on stop")
	}
}

func TestStartSpinnerSkipsNonTerminal(t *testing.T) {
	var out bytes.Buffer
	stop := startSpinner(&out, "x")
	stop()
	if out.Len() != 0 {
		t.Errorf("non-terminal writer should stay untouched, got %q", out.String())
	}
}
