package stream

import (
	"testing"
	"time"
)

func TestBackoffSequence(t *testing.T) {
	b := newBackoff(1000*time.Millisecond, 10000*time.Millisecond)

	want := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		10000 * time.Millisecond,
		10000 * time.Millisecond,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("attempt %d: delay = %v, want %v", i, got, w)
		}
	}
}

func TestBackoffResetAfterOpen(t *testing.T) {
	b := newBackoff(1000*time.Millisecond, 10000*time.Millisecond)

	for i := 0; i < 5; i++ {
		b.Next()
	}
	b.Reset()

	if got := b.Next(); got != 1000*time.Millisecond {
		t.Fatalf("delay after reset = %v, want 1s", got)
	}
	if got := b.Next(); got != 2000*time.Millisecond {
		t.Fatalf("second delay after reset = %v, want 2s", got)
	}
}
