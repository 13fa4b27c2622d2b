package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is matched by every *MissingKeyError.
	ErrMissingKey = errors.New("missing context key")

	// ErrEventPanicked wraps a panic recovered from an event or middleware.
	ErrEventPanicked = errors.New("event panicked")
)

// MissingKeyError reports a context dependency that was never stored, or was
// stored under a different type.
type MissingKeyError struct {
	Key  string
	Want string // requested Go type
	Got  string // stored Go type; empty when the key is absent
}

func (e *MissingKeyError) Error() string {
	if e.Got != "" {
		return fmt.Sprintf("%s: %q holds %s, want %s", ErrMissingKey, e.Key, e.Got, e.Want)
	}
	return fmt.Sprintf("%s: %q not found", ErrMissingKey, e.Key)
}

// Is makes errors.Is(err, ErrMissingKey) match.
func (e *MissingKeyError) Is(target error) bool {
	return target == ErrMissingKey
}

// IsMissingKey reports whether err is (or wraps) a missing context key error.
func IsMissingKey(err error) bool {
	return errors.Is(err, ErrMissingKey)
}

// panicError converts a recovered value into an error wrapping ErrEventPanicked.
func panicError(event string, r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %s: %w", ErrEventPanicked, event, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrEventPanicked, event, r)
}
