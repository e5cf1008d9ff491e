package interview

import (
	"sync"
	"time"
)

// Timer is a one-shot countdown. Each Arm starts from the full duration and supersedes
// the previous cycle; onExpire fires at most once per Arm.
type Timer struct {
	duration int
	interval time.Duration

	mu        sync.Mutex
	gen       uint64
	stop      chan struct{}
	remaining int
}

// NewTimer returns a timer that counts down duration ticks of the given interval.
func NewTimer(duration int, interval time.Duration) *Timer {
	if duration <= 0 {
		duration = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{duration: duration, interval: interval}
}

// Arm starts a new countdown. onTick receives the remaining ticks after each decrement
// while above zero; onExpire runs when the count reaches zero. Either may be nil.
func (t *Timer) Arm(onTick func(remaining int), onExpire func()) {
	t.mu.Lock()
	t.stopLocked()
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.remaining = t.duration
	t.mu.Unlock()

	go t.run(gen, stop, onTick, onExpire)
}

// Stop cancels the current countdown. Safe to call when nothing is armed.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

// Remaining returns the ticks left in the current cycle, or 0 when disarmed.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop == nil {
		return 0
	}
	return t.remaining
}

func (t *Timer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) run(gen uint64, stop <-chan struct{}, onTick func(int), onExpire func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining, fired, ok := t.tick(gen)
			if !ok {
				return
			}
			if fired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
			if onTick != nil {
				onTick(remaining)
			}
		}
	}
}

// tick decrements the countdown for generation gen. fired is true exactly once, on the
// tick that reaches zero, which also disarms the timer.
func (t *Timer) tick(gen uint64) (remaining int, fired bool, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen || t.stop == nil {
		return 0, false, false
	}
	t.remaining--
	if t.remaining > 0 {
		return t.remaining, false, true
	}
	t.remaining = 0
	t.stop = nil
	return 0, true, true
}
