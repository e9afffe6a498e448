package relay

import (
	"sync"
	"sync/atomic"
)

// observer watches the client side of a session and fires at most once, either
// when done is closed or when the relay reports a failed write.
type observer struct {
	done   <-chan struct{}
	onFire func()

	fired    atomic.Bool
	fireOnce sync.Once
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newObserver(done <-chan struct{}, onFire func()) *observer {
	o := &observer{
		done:   done,
		onFire: onFire,
		stopCh: make(chan struct{}),
	}

	go func() {
		select {
		case <-o.done:
			o.fire()
		case <-o.stopCh:
		}
	}()

	return o
}

func (o *observer) fire() {
	o.fireOnce.Do(func() {
		o.fired.Store(true)
		if o.onFire != nil {
			o.onFire()
		}
	})
}

// Fired reports whether the client is gone.
func (o *observer) Fired() bool {
	return o.fired.Load()
}

// poll checks done without blocking so that a disconnect that already happened
// is seen before the next fragment is forwarded.
func (o *observer) poll() bool {
	if o.Fired() {
		return true
	}

	select {
	case <-o.done:
		o.fire()
		return true
	default:
		return false
	}
}

func (o *observer) stop() {
	o.stopOnce.Do(func() { close(o.stopCh) })
}
