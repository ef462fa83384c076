package artifact

import (
	"errors"
	"testing"
)

func TestLoaded(t *testing.T) {
	a := Loaded(42)
	v, ok := a.Get()
	if !ok || v != 42 || !a.Available() || a.Err() != nil {
		t.Errorf("Loaded(42) = (%v, %v, %v)", v, ok, a.Err())
	}
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("missing file")
	a := Unavailable[string](cause)
	if a.Available() {
		t.Error("Unavailable artifact reported available")
	}
	if !errors.Is(a.Err(), cause) {
		t.Errorf("Err() = %v, want %v", a.Err(), cause)
	}

	if err := Unavailable[int](nil).Err(); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Unavailable(nil).Err() = %v, want ErrNotConfigured", err)
	}

	var zero Artifact[int]
	if zero.Available() || !errors.Is(zero.Err(), ErrNotConfigured) {
		t.Error("zero Artifact should be unavailable")
	}
}

func TestFrom(t *testing.T) {
	if a := From("x", nil); !a.Available() {
		t.Error("From(value, nil) should be loaded")
	}
	if a := From("x", errors.New("boom")); a.Available() {
		t.Error("From(value, err) should be unavailable")
	}
}
