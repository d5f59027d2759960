/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs continuations on a session's single logical thread. The
// controller never blocks: it suspends only at delays and at fetches.
type Scheduler interface {
	// After runs fn on the session thread once d has elapsed.
	After(d time.Duration, fn func())

	// Do runs work off the session thread, then runs done on it.
	Do(work func(), done func())
}

// Loop is a Scheduler backed by one goroutine draining a task channel.
// Either call Run, or select on Tasks from a loop of your own.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Post queues fn for the loop. It must not be called from the loop itself
// and is dropped once the loop has stopped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

func (l *Loop) Do(work func(), done func()) {
	go func() {
		work()
		l.Post(done)
	}()
}

// Tasks is the channel a custom loop must drain, calling each task in turn.
func (l *Loop) Tasks() <-chan func() {
	return l.tasks
}

// Stop discards pending and future tasks. It is safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run drains tasks until ctx ends or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	defer l.Stop()

	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			return
		case <-l.done:
			return
		}
	}
}
