// Package uid provides unique ID generation behind small interfaces so
// business code can swap deterministic generators in tests.
package uid

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}
