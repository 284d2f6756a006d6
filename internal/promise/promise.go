// Package promise bridges the outcome of a background operation into a
// value that can be polled from a render loop without blocking.
//
// A Promise is written at most once through its Sender and may then be
// polled any number of times; every poll observes the same Result.
package promise

import (
	"context"
	"fmt"
	"sync"
)

type Result[T any] struct {
	Value T
	Err   error
}

func (r *Result[T]) OK() bool {
	return r.Err == nil
}

type Promise[T any] struct {
	done   chan struct{}
	result Result[T]
}

type Sender[T any] struct {
	promise *Promise[T]
	once    sync.Once
}

// New returns the write side, to be moved into the background task, and
// the read side, to be kept by the caller.
func New[T any]() (*Sender[T], *Promise[T]) {
	p := &Promise[T]{done: make(chan struct{})}
	return &Sender[T]{promise: p}, p
}

// Resolved returns a promise that is already settled with value.
func Resolved[T any](value T) *Promise[T] {
	s, p := New[T]()
	s.Send(value, nil)
	return p
}

// Send settles the promise. Only the first call has an effect; it reports
// whether this call was the one that settled it.
func (s *Sender[T]) Send(value T, err error) bool {
	sent := false
	s.once.Do(func() {
		s.promise.result = Result[T]{Value: value, Err: err}
		close(s.promise.done)
		sent = true
	})
	return sent
}

// Poll never blocks. Until the sender fires it returns (nil, false).
// Afterwards it returns the same *Result on every call.
func (p *Promise[T]) Poll() (*Result[T], bool) {
	select {
	case <-p.done:
		return &p.result, true
	default:
		return nil, false
	}
}

func (p *Promise[T]) Pending() bool {
	_, ready := p.Poll()
	return !ready
}

func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the promise settles or ctx is done. It is meant for
// non-interactive callers; the render loop uses Poll.
func (p *Promise[T]) Wait(ctx context.Context) (*Result[T], error) {
	select {
	case <-p.done:
		return &p.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Spawn runs fn on its own goroutine and settles the returned promise with
// its outcome. A panic in fn settles the promise with an error.
func Spawn[T any](fn func() (T, error)) *Promise[T] {
	s, p := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				s.Send(zero, fmt.Errorf("task panicked: %v", r))
			}
		}()
		v, err := fn()
		s.Send(v, err)
	}()
	return p
}
