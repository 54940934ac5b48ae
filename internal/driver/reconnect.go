package driver

import "time"

const (
	defaultBackoffMin = 100 * time.Millisecond
	defaultBackoffMax = 2 * time.Second
)

// backoff produces the reconnect delay schedule: start at min, double per
// consecutive failure, cap at max, reset to min on success. Attempts are
// unbounded; a removed controller may be reinserted at any time.
type backoff struct {
	min, max time.Duration
	cur      time.Duration
}

func newBackoff(min, max time.Duration) *backoff {
	if min <= 0 {
		min = defaultBackoffMin
	}
	if max < min {
		max = defaultBackoffMax
	}
	if max < min {
		max = min
	}
	return &backoff{min: min, max: max, cur: min}
}

// next returns the delay to wait before the upcoming attempt and advances
// the schedule.
func (b *backoff) next() time.Duration {
	d := b.cur
	b.cur *= 2
	if b.cur > b.max {
		b.cur = b.max
	}
	return d
}

func (b *backoff) reset() {
	b.cur = b.min
}
