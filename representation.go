package shroud

import (
	"fmt"
	"strconv"
)

// Representation renders a value as text before it is masked.
// Implementations must be safe for concurrent use.
type Representation interface {
	// Represent returns the text form of v.
	Represent(v any) string
}

// RepresentationFunc adapts a function to the Representation interface.
type RepresentationFunc func(v any) string

// Represent calls f(v).
func (f RepresentationFunc) Represent(v any) string {
	return f(v)
}

// TypedRepresentation adapts a function over a known value type.
// Values of any other type fall back to their natural text form.
func TypedRepresentation[T any](fn func(T) string) Representation {
	return RepresentationFunc(func(v any) string {
		if typed, ok := v.(T); ok {
			return fn(typed)
		}
		return fmt.Sprint(v)
	})
}

type naturalRepresentation struct{}

// Natural returns the representation that renders a value in its default
// format, honoring fmt.Stringer and error.
func Natural() Representation {
	return naturalRepresentation{}
}

func (naturalRepresentation) Represent(v any) string {
	return fmt.Sprint(v)
}

type quotedRepresentation struct{}

// Quoted returns a representation that renders the natural text form as a
// double-quoted Go string literal.
func Quoted() Representation {
	return quotedRepresentation{}
}

func (quotedRepresentation) Represent(v any) string {
	return strconv.Quote(fmt.Sprint(v))
}
