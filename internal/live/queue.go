package live

import "sync"

// callQueue runs queued functions one at a time, in order, on its own goroutine.
// Push never blocks.
type callQueue struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stop    chan struct{}
	once    sync.Once
}

func newCallQueue() *callQueue {
	q := &callQueue{wake: make(chan struct{}, 1), stop: make(chan struct{})}
	go q.run()
	return q
}

func (q *callQueue) Push(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops the queue. Functions not yet started are dropped.
func (q *callQueue) Close() {
	q.once.Do(func() { close(q.stop) })
}

func (q *callQueue) run() {
	for {
		select {
		case <-q.stop:
			return
		case <-q.wake:
		}
		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				q.mu.Unlock()
				break
			}
			fn := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.mu.Unlock()

			select {
			case <-q.stop:
				return
			default:
			}
			fn()
		}
	}
}
