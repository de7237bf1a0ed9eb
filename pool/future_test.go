package pool

import (
	"errors"
	"testing"
	"time"
)

func TestHandle_Get_ReturnsValue(t *testing.T) {
	h := newHandle[int]()
	h.deliver(99, nil)

	v, err := h.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 99 {
		t.Fatalf("expected 99, got %d", v)
	}
}

func TestHandle_Get_Twice_IsBadAccess(t *testing.T) {
	h := newHandle[int]()
	h.deliver(1, nil)

	if _, err := h.Get(); err != nil {
		t.Fatalf("unexpected error on first Get: %v", err)
	}

	_, err := h.Get()
	if !errors.Is(err, ErrBadAccess) {
		t.Fatalf("expected ErrBadAccess on second Get, got %v", err)
	}
}

func TestHandle_TryGet_NotReady(t *testing.T) {
	h := newHandle[int]()

	_, err, ready := h.TryGet()
	if ready {
		t.Fatal("expected not ready")
	}
	if err != nil {
		t.Fatalf("expected no error while not ready, got %v", err)
	}

	// handle is untouched; a later TryGet should still see the delivery.
	h.deliver(5, nil)
	v, err, ready := h.TryGet()
	if !ready {
		t.Fatal("expected ready after delivery")
	}
	if err != nil || v != 5 {
		t.Fatalf("unexpected outcome: %d, %v", v, err)
	}
}

func TestHandle_WaitFor_Timeout(t *testing.T) {
	h := newHandle[int]()

	result := h.WaitFor(10 * time.Millisecond)
	if result.Outcome != WaitTimeout {
		t.Fatalf("expected WaitTimeout, got %v", result.Outcome)
	}

	h.deliver(3, nil)
	result = h.WaitFor(time.Second)
	if result.Outcome != WaitReady || result.Value != 3 {
		t.Fatalf("expected WaitReady(3), got %+v", result)
	}
}

func TestHandle_WaitFor_Failed(t *testing.T) {
	h := newHandle[int]()
	h.deliver(0, ErrAbandoned)

	result := h.WaitFor(time.Second)
	if result.Outcome != WaitFailed {
		t.Fatalf("expected WaitFailed, got %v", result.Outcome)
	}
	if !errors.Is(result.Err, ErrAbandoned) {
		t.Fatalf("expected ErrAbandoned, got %v", result.Err)
	}
}

func TestHandle_ID_IsStable(t *testing.T) {
	h := newHandle[int]()
	id1 := h.ID()
	id2 := h.ID()
	if id1 != id2 {
		t.Fatal("expected ID to be stable across calls")
	}
}
