// Package artifact models an optional startup dependency, such as a trained
// model file, that either loaded or is unavailable.
package artifact

import "errors"

var ErrNotConfigured = errors.New("artifact not configured")

// The zero Artifact is unavailable.
type Artifact[T any] struct {
	value  T
	err    error
	loaded bool
}

func Loaded[T any](value T) Artifact[T] {
	return Artifact[T]{value: value, loaded: true}
}

// Unavailable records why the artifact could not be used. A nil err is
// replaced with ErrNotConfigured.
func Unavailable[T any](err error) Artifact[T] {
	if err == nil {
		err = ErrNotConfigured
	}
	return Artifact[T]{err: err}
}

// From adapts a (value, error) pair returned by a loader.
func From[T any](value T, err error) Artifact[T] {
	if err != nil {
		return Unavailable[T](err)
	}
	return Loaded(value)
}

func (a Artifact[T]) Available() bool {
	return a.loaded
}

func (a Artifact[T]) Get() (T, bool) {
	return a.value, a.loaded
}

// Err is nil for a loaded artifact.
func (a Artifact[T]) Err() error {
	if a.loaded {
		return nil
	}
	if a.err == nil {
		return ErrNotConfigured
	}
	return a.err
}
