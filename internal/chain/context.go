package chain

import (
	"fmt"
	"sort"
)

// ExecContext is the heterogeneous keyed store that flows through one chain
// run. It is not a context.Context.
//
// Values are stored as any. Typed reads go through Get, Take, and Require,
// which treat a value of the wrong dynamic type as absent. No operation
// panics on a missing key or a type mismatch.
//
// An ExecContext is owned by a single run and is not safe for concurrent use.
type ExecContext struct {
	values map[string]any
}

// NewExecContext creates an empty context.
func NewExecContext() *ExecContext {
	return &ExecContext{values: make(map[string]any)}
}

// Set stores value under key, replacing any prior value of any type.
func (c *ExecContext) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

// Has reports whether key is present, regardless of the stored type.
func (c *ExecContext) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Delete removes key. Deleting an absent key is a no-op.
func (c *ExecContext) Delete(key string) {
	delete(c.values, key)
}

// Len returns the number of stored keys.
func (c *ExecContext) Len() int {
	return len(c.values)
}

// Keys returns the stored keys in sorted order.
func (c *ExecContext) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value under key if it is present and has type T.
// Otherwise it returns the zero T and false.
func Get[T any](c *ExecContext, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	raw, ok := c.values[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Take is Get followed by removal of key. A type mismatch leaves the stored
// value in place.
func Take[T any](c *ExecContext, key string) (T, bool) {
	v, ok := Get[T](c, key)
	if ok {
		delete(c.values, key)
	}
	return v, ok
}

// Require is Get for values an event cannot proceed without. A missing key
// or a type mismatch yields a *MissingKeyError.
func Require[T any](c *ExecContext, key string) (T, error) {
	v, ok := Get[T](c, key)
	if ok {
		return v, nil
	}
	var zero T
	err := &MissingKeyError{Key: key, Want: fmt.Sprintf("%T", zero)}
	if c != nil {
		if raw, present := c.values[key]; present {
			err.Got = fmt.Sprintf("%T", raw)
		}
	}
	return zero, err
}
