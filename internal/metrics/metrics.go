package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value atomic.Uint64
}

func (c *Counter) Inc() {
	c.value.Add(1)
}

func (c *Counter) Add(n uint64) {
	c.value.Add(n)
}

func (c *Counter) Load() uint64 {
	return c.value.Load()
}

// Latency accumulates call durations without locking.
type Latency struct {
	count atomic.Uint64
	total atomic.Int64
	max   atomic.Int64
}

type LatencySnapshot struct {
	Count uint64
	Mean  time.Duration
	Max   time.Duration
}

func (l *Latency) Observe(d time.Duration) {
	l.count.Add(1)
	l.total.Add(int64(d))
	for {
		cur := l.max.Load()
		if int64(d) <= cur || l.max.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

func (l *Latency) Snapshot() LatencySnapshot {
	n := l.count.Load()
	s := LatencySnapshot{Count: n, Max: time.Duration(l.max.Load())}
	if n > 0 {
		s.Mean = time.Duration(l.total.Load() / int64(n))
	}
	return s
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveInto records the elapsed time in l and returns it.
func (t *Timer) ObserveInto(l *Latency) time.Duration {
	d := t.Duration()
	l.Observe(d)
	return d
}
