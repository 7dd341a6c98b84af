package clock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopClosed is returned when posting to a closed loop
var ErrLoopClosed = errors.New("loop closed")

// Loop is the real-time scheduler backed by an owner-drained task channel
type Loop struct {
	tasks    chan func()
	done     chan struct{}
	closeOne sync.Once
}

// NewLoop creates a loop with the given task buffer
func NewLoop(buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		tasks: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Tasks returns the channel the owner drains and executes
func (l *Loop) Tasks() <-chan func() {
	return l.tasks
}

// Now implements Scheduler
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Post queues fn for the owner, blocking while the buffer is full
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Do posts fn and waits until the owner has executed it
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// After implements Scheduler
// Cancellation is re-checked on the owner, so a timer that already fired but
// whose task is still queued does not run after Cancel
func (l *Loop) After(d time.Duration, fn func()) Cancel {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Every implements Scheduler
func (l *Loop) Every(d time.Duration, fn func()) Cancel {
	var cancelled atomic.Bool
	stop := make(chan struct{})
	var stopOnce sync.Once

	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				err := l.Post(func() {
					if !cancelled.Load() {
						fn()
					}
				})
				if err != nil {
					return
				}
			case <-stop:
				return
			case <-l.done:
				return
			}
		}
	}()

	return func() {
		cancelled.Store(true)
		stopOnce.Do(func() { close(stop) })
	}
}

// Close stops accepting tasks and releases timer goroutines
func (l *Loop) Close() {
	l.closeOne.Do(func() { close(l.done) })
}
