package promise

import (
	"sync"

	"github.com/google/uuid"
	"github.com/smmsclient/smms/internal/logger"
)

// Ticket identifies one task started in a Slot. Done closes when the task
// settles; Gen tells whether its result is still the current one.
type Ticket struct {
	Kind string
	ID   string
	Gen  uint64
	Done <-chan struct{}
}

// Slot holds the single live promise for one kind of remote data. Every
// start or reset bumps the generation so results from superseded tasks can
// be recognised and dropped.
type Slot[T any] struct {
	kind    string
	mu      sync.Mutex
	promise *Promise[T]
	gen     uint64
}

func NewSlot[T any](kind string) *Slot[T] {
	return &Slot[T]{kind: kind}
}

// Start runs fn only if the slot is empty. It reports false, with the
// current ticket, when a promise (pending or settled) is already held.
func (s *Slot[T]) Start(fn func() (T, error)) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.promise != nil {
		return Ticket{Kind: s.kind, Gen: s.gen, Done: s.promise.Done()}, false
	}
	return s.startLocked(fn), true
}

// Restart discards whatever the slot holds and runs fn as the new current
// task.
func (s *Slot[T]) Restart(fn func() (T, error)) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.startLocked(fn)
}

// Set stores an already known value as the current result.
func (s *Slot[T]) Set(value T) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.promise = Resolved(value)
	return s.gen
}

// Clear empties the slot. Tasks still running finish unobserved.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.promise = nil
}

func (s *Slot[T]) startLocked(fn func() (T, error)) Ticket {
	s.gen++
	id := uuid.New().String()
	kind := s.kind

	logger.LogTask(kind, id, "started")
	s.promise = Spawn(func() (T, error) {
		v, err := fn()
		if err != nil {
			logger.LogTask(kind, id, "failed")
		} else {
			logger.LogTask(kind, id, "resolved")
		}
		return v, err
	})

	return Ticket{Kind: kind, ID: id, Gen: s.gen, Done: s.promise.Done()}
}

// Accept reports whether gen is still the slot's current generation.
func (s *Slot[T]) Accept(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.promise != nil && gen == s.gen
}

func (s *Slot[T]) Gen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.gen
}

func (s *Slot[T]) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.promise == nil
}

// Pending reports whether the current task is still running.
func (s *Slot[T]) Pending() bool {
	s.mu.Lock()
	p := s.promise
	s.mu.Unlock()

	return p != nil && p.Pending()
}

// Poll inspects the current promise without blocking. It returns
// (nil, false) when the slot is empty or the task is still running.
func (s *Slot[T]) Poll() (*Result[T], bool) {
	s.mu.Lock()
	p := s.promise
	s.mu.Unlock()

	if p == nil {
		return nil, false
	}
	return p.Poll()
}
