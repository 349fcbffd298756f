package stream

import "time"

// backoff produces the reconnect delay sequence: floor, doubling per
// consecutive failure, capped, reset to the floor on a successful open.
type backoff struct {
	floor time.Duration
	cap   time.Duration
	next  time.Duration
}

func newBackoff(floor, cap time.Duration) *backoff {
	return &backoff{floor: floor, cap: cap, next: floor}
}

// Next returns the delay to wait before the upcoming attempt and advances
// the sequence.
func (b *backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.cap {
		b.next = b.cap
	}
	return d
}

// Reset returns the sequence to the floor.
func (b *backoff) Reset() {
	b.next = b.floor
}
