package shroud

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"sync"
)

// Shape classifies the declared type of a field.
type Shape int

// Shapes recognized by the resolver. Fields of any other type are never
// transformed.
const (
	ShapeNone Shape = iota
	ShapeSingle
	ShapeList
	ShapeSet
	ShapeCollection
	ShapeMap
)

func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapeList:
		return "list"
	case ShapeSet:
		return "set"
	case ShapeCollection:
		return "collection"
	case ShapeMap:
		return "map"
	default:
		return "none"
	}
}

// IsContainer reports whether s holds multiple values.
func (s Shape) IsContainer() bool {
	return s == ShapeList || s == ShapeSet || s == ShapeCollection || s == ShapeMap
}

// shaped is implemented by every wrapped type so the resolver can classify a
// field and find its subject type without instantiating it.
type shaped interface {
	shape() Shape
	subjectType() reflect.Type
}

// wholeTarget is implemented by *Obfuscated[T].
type wholeTarget interface {
	obfuscateWhole(d Decision)
}

// elementsTarget is implemented by *List[T], *Set[T] and *Collection[T].
type elementsTarget interface {
	obfuscateElements(d Decision)
}

// valuesTarget is implemented by *Map[K, V].
type valuesTarget interface {
	obfuscateValues(d Decision)
}

// subjectHolder is implemented by every wrapped type so structs held inside
// can be masked in place. The returned value is addressable or a slice or map;
// it is invalid when the wrapper is absent.
type subjectHolder interface {
	subjectValue() reflect.Value
}

// Obfuscated holds a value whose String form is masked.
// The zero value is absent: it encodes as null and renders as "".
type Obfuscated[T any] struct {
	value T
	valid bool
	text  func() string
}

// Of wraps v without masking; String renders its natural text form.
func Of[T any](v T) Obfuscated[T] {
	return Obfuscated[T]{value: v, valid: true}
}

// Obfuscate wraps v so that String returns o applied to r's rendering of v.
// The masked text is computed on first use.
func Obfuscate[T any](o Obfuscator, v T, r Representation) Obfuscated[T] {
	return Obfuscated[T]{
		value: v,
		valid: true,
		text: sync.OnceValue(func() string {
			return o.ObfuscateText(r.Represent(v))
		}),
	}
}

// Value returns the unmasked value.
func (o Obfuscated[T]) Value() T {
	return o.value
}

// Valid reports whether a value is present.
func (o Obfuscated[T]) Valid() bool {
	return o.valid
}

// String returns the masked text form.
func (o Obfuscated[T]) String() string {
	switch {
	case !o.valid:
		return ""
	case o.text == nil:
		return fmt.Sprint(o.value)
	default:
		return o.text()
	}
}

func (Obfuscated[T]) shape() Shape { return ShapeSingle }

func (Obfuscated[T]) subjectType() reflect.Type { return reflect.TypeFor[T]() }

func (o *Obfuscated[T]) subjectValue() reflect.Value {
	if !o.valid {
		return reflect.Value{}
	}
	return reflect.ValueOf(&o.value).Elem()
}

func (o *Obfuscated[T]) obfuscateWhole(d Decision) {
	if o.valid {
		*o = Obfuscate(d.Obfuscator, o.value, d.Representation)
	}
}

// List holds an ordered list of values, each masked separately in String.
type List[T any] struct {
	values []T
	valid  bool
	text   func() string
}

// ListOf wraps a copy of values without masking.
func ListOf[T any](values []T) List[T] {
	if values == nil {
		return List[T]{}
	}
	return List[T]{values: slices.Clone(values), valid: true}
}

// ObfuscateList wraps a copy of values so that String masks every element.
func ObfuscateList[T any](o Obfuscator, values []T, r Representation) List[T] {
	l := ListOf(values)
	l.obfuscateElements(Decision{Obfuscator: o, Representation: r})
	return l
}

// Values returns a copy of the unmasked values.
func (l List[T]) Values() []T {
	return slices.Clone(l.values)
}

// At returns the unmasked value at index i.
func (l List[T]) At(i int) T {
	return l.values[i]
}

// Len returns the number of values.
func (l List[T]) Len() int {
	return len(l.values)
}

// All iterates over the unmasked values in order.
func (l List[T]) All() iter.Seq2[int, T] {
	return slices.All(l.values)
}

// Valid reports whether a list is present.
func (l List[T]) Valid() bool {
	return l.valid
}

// String returns the masked text form, e.g. [F***O B***R].
func (l List[T]) String() string {
	return renderElements(l.valid, l.values, l.text)
}

func (List[T]) shape() Shape { return ShapeList }

func (List[T]) subjectType() reflect.Type { return reflect.TypeFor[T]() }

func (l *List[T]) subjectValue() reflect.Value { return reflect.ValueOf(l.values) }

func (l *List[T]) obfuscateElements(d Decision) {
	if l.valid {
		l.text = elementText(d, l.values)
	}
}

// Collection holds values without positional access, each masked separately in
// String.
type Collection[T any] struct {
	values []T
	valid  bool
	text   func() string
}

// CollectionOf wraps a copy of values without masking.
func CollectionOf[T any](values []T) Collection[T] {
	if values == nil {
		return Collection[T]{}
	}
	return Collection[T]{values: slices.Clone(values), valid: true}
}

// ObfuscateCollection wraps a copy of values so that String masks every element.
func ObfuscateCollection[T any](o Obfuscator, values []T, r Representation) Collection[T] {
	c := CollectionOf(values)
	c.obfuscateElements(Decision{Obfuscator: o, Representation: r})
	return c
}

// Values returns a copy of the unmasked values.
func (c Collection[T]) Values() []T {
	return slices.Clone(c.values)
}

// Len returns the number of values.
func (c Collection[T]) Len() int {
	return len(c.values)
}

// All iterates over the unmasked values.
func (c Collection[T]) All() iter.Seq[T] {
	return slices.Values(c.values)
}

// Valid reports whether a collection is present.
func (c Collection[T]) Valid() bool {
	return c.valid
}

// String returns the masked text form.
func (c Collection[T]) String() string {
	return renderElements(c.valid, c.values, c.text)
}

func (Collection[T]) shape() Shape { return ShapeCollection }

func (Collection[T]) subjectType() reflect.Type { return reflect.TypeFor[T]() }

func (c *Collection[T]) subjectValue() reflect.Value { return reflect.ValueOf(c.values) }

func (c *Collection[T]) obfuscateElements(d Decision) {
	if c.valid {
		c.text = elementText(d, c.values)
	}
}

// Set holds distinct values in first-seen order, each masked separately in
// String.
type Set[T comparable] struct {
	values []T
	index  map[T]struct{}
	valid  bool
	text   func() string
}

// SetOf wraps the distinct elements of values without masking.
func SetOf[T comparable](values []T) Set[T] {
	if values == nil {
		return Set[T]{}
	}
	s := Set[T]{index: make(map[T]struct{}, len(values)), values: make([]T, 0, len(values)), valid: true}
	for _, v := range values {
		if _, seen := s.index[v]; seen {
			continue
		}
		s.index[v] = struct{}{}
		s.values = append(s.values, v)
	}
	return s
}

// ObfuscateSet wraps the distinct elements of values so that String masks every
// element.
func ObfuscateSet[T comparable](o Obfuscator, values []T, r Representation) Set[T] {
	s := SetOf(values)
	s.obfuscateElements(Decision{Obfuscator: o, Representation: r})
	return s
}

// Contains reports whether v is in the set.
func (s Set[T]) Contains(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns the unmasked values in first-seen order.
func (s Set[T]) Values() []T {
	return slices.Clone(s.values)
}

// Len returns the number of distinct values.
func (s Set[T]) Len() int {
	return len(s.values)
}

// All iterates over the unmasked values in first-seen order.
func (s Set[T]) All() iter.Seq[T] {
	return slices.Values(s.values)
}

// Valid reports whether a set is present.
func (s Set[T]) Valid() bool {
	return s.valid
}

// String returns the masked text form.
func (s Set[T]) String() string {
	return renderElements(s.valid, s.values, s.text)
}

func (Set[T]) shape() Shape { return ShapeSet }

func (Set[T]) subjectType() reflect.Type { return reflect.TypeFor[T]() }

func (s *Set[T]) subjectValue() reflect.Value { return reflect.ValueOf(s.values) }

func (s *Set[T]) obfuscateElements(d Decision) {
	if s.valid {
		s.text = elementText(d, s.values)
	}
}

// Map holds key/value pairs whose values are masked in String.
// Keys are always rendered as is.
type Map[K comparable, V any] struct {
	entries map[K]V
	valid   bool
	text    func() string
}

// MapOf wraps a copy of entries without masking.
func MapOf[K comparable, V any](entries map[K]V) Map[K, V] {
	if entries == nil {
		return Map[K, V]{}
	}
	return Map[K, V]{entries: maps.Clone(entries), valid: true}
}

// ObfuscateMap wraps a copy of entries so that String masks every value.
func ObfuscateMap[K comparable, V any](o Obfuscator, entries map[K]V, r Representation) Map[K, V] {
	m := MapOf(entries)
	m.obfuscateValues(Decision{Obfuscator: o, Representation: r})
	return m
}

// Get returns the unmasked value for key.
func (m Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Values returns a copy of the unmasked entries.
func (m Map[K, V]) Values() map[K]V {
	return maps.Clone(m.entries)
}

// Len returns the number of entries.
func (m Map[K, V]) Len() int {
	return len(m.entries)
}

// All iterates over the unmasked entries in unspecified order.
func (m Map[K, V]) All() iter.Seq2[K, V] {
	return maps.All(m.entries)
}

// Valid reports whether a map is present.
func (m Map[K, V]) Valid() bool {
	return m.valid
}

// String returns the masked text form with sorted keys, e.g. map[1:-***2].
func (m Map[K, V]) String() string {
	switch {
	case !m.valid:
		return ""
	case m.text == nil:
		return fmt.Sprint(m.entries)
	default:
		return m.text()
	}
}

func (Map[K, V]) shape() Shape { return ShapeMap }

func (Map[K, V]) subjectType() reflect.Type { return reflect.TypeFor[V]() }

func (m *Map[K, V]) subjectValue() reflect.Value { return reflect.ValueOf(m.entries) }

func (m *Map[K, V]) obfuscateValues(d Decision) {
	if !m.valid {
		return
	}
	entries := m.entries
	m.text = sync.OnceValue(func() string {
		masked := make(map[K]string, len(entries))
		for k, v := range entries {
			masked[k] = d.Obfuscator.ObfuscateText(d.Representation.Represent(v))
		}
		return fmt.Sprint(masked)
	})
}

func elementText[T any](d Decision, values []T) func() string {
	return sync.OnceValue(func() string {
		masked := make([]string, len(values))
		for i, v := range values {
			masked[i] = d.Obfuscator.ObfuscateText(d.Representation.Represent(v))
		}
		return fmt.Sprint(masked)
	})
}

func renderElements[T any](valid bool, values []T, text func() string) string {
	switch {
	case !valid:
		return ""
	case text == nil:
		return fmt.Sprint(values)
	default:
		return text()
	}
}
