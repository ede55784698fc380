package session

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a query settles.
const DefaultDebounce = 300 * time.Millisecond

// Timer is a pending callback handle.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Settled is delivered when the input has been quiet for the debounce delay.
type Settled struct {
	Seq  uint64
	Text string
}

// Debouncer turns a burst of query changes into a single trailing Settled.
// Only the newest scheduled timer may deliver; Stop on an older handle is
// backed by a sequence check for timers that were already firing.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	after  AfterFunc
	timer  Timer
	seq    uint64
	closed bool
	out    chan Settled
}

func NewDebouncer(delay time.Duration, after AfterFunc) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if after == nil {
		after = realAfterFunc
	}
	return &Debouncer{
		delay: delay,
		after: after,
		out:   make(chan Settled, 1),
	}
}

// Schedule releases any pending timer and starts a new one for text.
func (d *Debouncer) Schedule(text string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.seq
	}
	d.releaseLocked()
	d.seq++
	seq := d.seq
	d.timer = d.after(d.delay, func() { d.fire(seq, text) })
	return seq
}

// Cancel releases the pending timer without delivering.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.releaseLocked()
	d.seq++
}

// Current returns the sequence of the newest scheduled timer.
func (d *Debouncer) Current() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// SetDelay changes the delay used by later Schedule calls.
func (d *Debouncer) SetDelay(delay time.Duration) {
	if delay <= 0 {
		return
	}
	d.mu.Lock()
	d.delay = delay
	d.mu.Unlock()
}

func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// C delivers settled queries. It is closed by Close.
func (d *Debouncer) C() <-chan Settled {
	return d.out
}

// Close releases the pending timer; nothing is delivered afterwards.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.releaseLocked()
	d.closed = true
	close(d.out)
}

func (d *Debouncer) releaseLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(seq uint64, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || seq != d.seq {
		return
	}
	d.timer = nil

	// The loop may not have drained a previous settle yet; the newer one wins.
	select {
	case <-d.out:
	default:
	}
	d.out <- Settled{Seq: seq, Text: text}
}
