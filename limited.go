package tabletop

import (
	"cmp"
	"fmt"
)

// LimitedProperty is a Property whose every value, including the initial
// one, must lie within [Lower, Upper]. Writes outside the range fail with
// ErrOutOfRange and change nothing.
type LimitedProperty[T cmp.Ordered] struct {
	*Property[T]
	lower, upper T
}

// LimitedDoubleProperty is the bounded float64 property used for sizes,
// opacity and progress values. NaN is never in range.
type LimitedDoubleProperty = LimitedProperty[float64]

// NewLimitedProperty creates a bounded property. It fails with
// ErrInvalidBounds if lower > upper and with ErrOutOfRange if initial lies
// outside the bounds.
func NewLimitedProperty[T cmp.Ordered](lower, upper, initial T) (*LimitedProperty[T], error) {
	// Written as a negation so NaN bounds are rejected too.
	if !(lower <= upper) {
		return nil, fmt.Errorf("%w: [%v, %v]", ErrInvalidBounds, lower, upper)
	}
	p := &LimitedProperty[T]{lower: lower, upper: upper}
	if err := p.check(initial); err != nil {
		return nil, err
	}
	p.Property = NewProperty(initial)
	p.validate = p.check
	return p, nil
}

// NewLimitedDoubleProperty creates a LimitedDoubleProperty.
func NewLimitedDoubleProperty(lower, upper, initial float64) (*LimitedDoubleProperty, error) {
	return NewLimitedProperty(lower, upper, initial)
}

// mustLimited is used for framework-owned properties whose bounds are constants.
func mustLimited[T cmp.Ordered](lower, upper, initial T) *LimitedProperty[T] {
	p, err := NewLimitedProperty(lower, upper, initial)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *LimitedProperty[T]) check(v T) error {
	if !(p.lower <= v && v <= p.upper) {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrOutOfRange, v, p.lower, p.upper)
	}
	return nil
}

// Lower returns the inclusive lower bound.
func (p *LimitedProperty[T]) Lower() T { return p.lower }

// Upper returns the inclusive upper bound.
func (p *LimitedProperty[T]) Upper() T { return p.upper }

// InRange reports whether v would be accepted.
func (p *LimitedProperty[T]) InRange(v T) bool {
	return p.check(v) == nil
}

// Clamp returns v limited to [Lower, Upper].
func (p *LimitedProperty[T]) Clamp(v T) T {
	return min(max(v, p.lower), p.upper)
}
