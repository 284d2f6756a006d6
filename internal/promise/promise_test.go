package promise

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for promise")
	}
}

func TestPollNotReadyUntilSent(t *testing.T) {
	sender, p := New[string]()

	if r, ready := p.Poll(); ready || r != nil {
		t.Fatalf("expected not ready, got %v %v", r, ready)
	}
	if !p.Pending() {
		t.Error("expected promise to be pending")
	}

	sender.Send("token", nil)

	r, ready := p.Poll()
	if !ready {
		t.Fatal("expected ready after send")
	}
	if r.Value != "token" || r.Err != nil {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestPollIsIdempotent(t *testing.T) {
	sender, p := New[[]int]()
	sender.Send([]int{1, 2, 3}, nil)

	first, _ := p.Poll()
	second, _ := p.Poll()
	third, _ := p.Poll()

	if first != second || second != third {
		t.Error("expected every poll to return the same result")
	}
	if len(third.Value) != 3 {
		t.Errorf("expected value to survive repeated polls, got %v", third.Value)
	}
}

func TestSendOnlyOnce(t *testing.T) {
	sender, p := New[int]()

	if !sender.Send(1, nil) {
		t.Error("expected first send to settle the promise")
	}
	if sender.Send(2, errors.New("late")) {
		t.Error("expected second send to be ignored")
	}

	r, _ := p.Poll()
	if r.Value != 1 || r.Err != nil {
		t.Errorf("expected first value to stick, got %+v", r)
	}
}

func TestErrorResult(t *testing.T) {
	sender, p := New[int]()
	sender.Send(0, errors.New("bad credentials"))

	r, ready := p.Poll()
	if !ready {
		t.Fatal("expected ready")
	}
	if r.OK() {
		t.Error("expected error result")
	}
	if r.Err.Error() != "bad credentials" {
		t.Errorf("expected message to be preserved, got %q", r.Err.Error())
	}
}

func TestSpawn(t *testing.T) {
	release := make(chan struct{})
	p := Spawn(func() (string, error) {
		<-release
		return "done", nil
	})

	if !p.Pending() {
		t.Error("expected spawned promise to be pending")
	}
	close(release)
	waitDone(t, p.Done())

	r, _ := p.Poll()
	if r.Value != "done" {
		t.Errorf("expected done, got %q", r.Value)
	}
}

func TestSpawnRecoversPanic(t *testing.T) {
	p := Spawn(func() (int, error) {
		panic("missing data")
	})
	waitDone(t, p.Done())

	r, _ := p.Poll()
	if r.Err == nil {
		t.Fatal("expected panic to surface as an error")
	}
}

func TestWait(t *testing.T) {
	p := Spawn(func() (int, error) { return 42, nil })

	r, err := p.Wait(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Value != 42 {
		t.Errorf("expected 42, got %d", r.Value)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	_, p := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestResolved(t *testing.T) {
	p := Resolved("cached")
	r, ready := p.Poll()
	if !ready || r.Value != "cached" {
		t.Errorf("expected settled promise, got %+v %v", r, ready)
	}
}
