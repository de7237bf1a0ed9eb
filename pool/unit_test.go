package pool

import (
	"errors"
	"testing"
)

func TestUnit_Invoke_DeliversValue(t *testing.T) {
	h := newHandle[string]()
	u := newUnit(func() (string, error) { return "ok", nil }, h)

	u.invoke()

	v, err := h.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" {
		t.Fatalf("expected ok, got %q", v)
	}
}

func TestUnit_Invoke_WrapsClosureError(t *testing.T) {
	inner := errors.New("failed")
	h := newHandle[int]()
	u := newUnit(func() (int, error) { return 0, inner }, h)

	u.invoke()

	_, err := h.Get()
	var uf *UserFailure
	if !errors.As(err, &uf) {
		t.Fatalf("expected *UserFailure, got %T", err)
	}
	if !errors.Is(uf.Unwrap(), inner) {
		t.Fatalf("expected wrapped inner error, got %v", uf.Unwrap())
	}
	if uf.Panic {
		t.Fatal("expected Panic to be false for a returned error")
	}
}

func TestUnit_Invoke_RecoversPanic(t *testing.T) {
	h := newHandle[int]()
	u := newUnit(func() (int, error) { panic("boom") }, h)

	u.invoke()

	_, err := h.Get()
	var uf *UserFailure
	if !errors.As(err, &uf) {
		t.Fatalf("expected *UserFailure, got %T", err)
	}
	if !uf.Panic {
		t.Fatal("expected Panic to be true for a recovered panic")
	}
}

func TestUnit_Invoke_TwiceIsBadAccess(t *testing.T) {
	h := newHandle[int]()
	u := newUnit(func() (int, error) { return 1, nil }, h)

	u.invoke()
	if _, err := h.Get(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The channel is drained after the first Get, so a second invoke (a
	// BadAccess: the unit was already claimed) can deliver without
	// blocking. The handle is already consumed, so the delivery is read
	// straight off its channel.
	u.invoke()
	if !u.claimed.Load() {
		t.Fatal("expected unit to remain claimed")
	}
	select {
	case r := <-h.result:
		if !errors.Is(r.err, ErrBadAccess) {
			t.Fatalf("expected ErrBadAccess from second invoke, got %v", r.err)
		}
	default:
		t.Fatal("expected second invoke to deliver ErrBadAccess")
	}
}

func TestUnit_Abandon_DeliversAbandoned(t *testing.T) {
	h := newHandle[int]()
	u := newUnit(func() (int, error) { return 1, nil }, h)

	u.abandon()

	_, err := h.Get()
	if !errors.Is(err, ErrAbandoned) {
		t.Fatalf("expected ErrAbandoned, got %v", err)
	}
}

func TestUnit_AbandonAfterInvoke_IsNoop(t *testing.T) {
	h := newHandle[int]()
	u := newUnit(func() (int, error) { return 42, nil }, h)

	u.invoke()
	u.abandon() // must not block or overwrite the delivered value

	v, err := h.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}
