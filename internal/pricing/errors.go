package pricing

import (
	"errors"
	"fmt"
)

// ErrDomain is matched by every *DomainError via errors.Is.
var ErrDomain = errors.New("input outside Black-Scholes domain")

// DomainError names the market input that violated its constraint.
type DomainError struct {
	Field string
	Value float64
}

func (e *DomainError) Error() string {
	if e.Field == "r" {
		return fmt.Sprintf("%s: r must be finite, got %v", ErrDomain, e.Value)
	}
	return fmt.Sprintf("%s: %s must be > 0, got %v", ErrDomain, e.Field, e.Value)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}
