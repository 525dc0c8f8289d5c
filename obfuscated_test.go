package shroud

import (
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

var (
	upper  = TypedRepresentation(strings.ToUpper)
	negate = TypedRepresentation(func(v int) string { return Natural().Represent(-v) })
	edges  = Portion(PortionOptions{KeepAtStart: 1, KeepAtEnd: 1, FixedTotalLength: 5})
)

// countingObfuscator counts calls to ObfuscateText.
type countingObfuscator struct {
	calls atomic.Int64
}

func (c *countingObfuscator) ObfuscateText(text string) string {
	c.calls.Add(1)
	return "<" + text + ">"
}

func TestShape(t *testing.T) {
	tests := []struct {
		shape     Shape
		name      string
		container bool
	}{
		{ShapeNone, "none", false},
		{ShapeSingle, "single", false},
		{ShapeList, "list", true},
		{ShapeSet, "set", true},
		{ShapeCollection, "collection", true},
		{ShapeMap, "map", true},
	}

	for _, tt := range tests {
		if tt.shape.String() != tt.name {
			t.Errorf("Shape(%d).String() = %q, want %q", tt.shape, tt.shape.String(), tt.name)
		}
		if tt.shape.IsContainer() != tt.container {
			t.Errorf("%s.IsContainer() = %v, want %v", tt.name, tt.shape.IsContainer(), tt.container)
		}
	}
}

func TestObfuscated(t *testing.T) {
	var absent Obfuscated[string]
	if absent.Valid() || absent.String() != "" {
		t.Errorf("zero Obfuscated = %q, valid %v", absent.String(), absent.Valid())
	}

	plain := Of(42)
	if !plain.Valid() || plain.String() != "42" || plain.Value() != 42 {
		t.Errorf("Of(42) = %q, %d", plain.String(), plain.Value())
	}

	masked := Obfuscate(FixedLength(3), "foo", Natural())
	if masked.String() != "***" {
		t.Errorf("String() = %q, want %q", masked.String(), "***")
	}
	if masked.Value() != "foo" {
		t.Errorf("Value() = %q, want %q", masked.Value(), "foo")
	}

	if got := Obfuscate(edges, 2, negate).String(); got != "-***2" {
		t.Errorf("negated portion = %q, want %q", got, "-***2")
	}
}

func TestObfuscated_Lazy(t *testing.T) {
	o := &countingObfuscator{}
	v := Obfuscate(o, "x", Natural())

	if o.calls.Load() != 0 {
		t.Fatal("masking should not run before String")
	}
	_ = v.String()
	_ = v.String()
	if o.calls.Load() != 1 {
		t.Errorf("ObfuscateText called %d times, want 1", o.calls.Load())
	}
}

func TestObfuscated_ConcurrentString(t *testing.T) {
	o := &countingObfuscator{}
	v := Obfuscate(o, "x", Natural())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := v.String(); got != "<x>" {
				t.Errorf("String() = %q", got)
			}
		}()
	}
	wg.Wait()

	if o.calls.Load() != 1 {
		t.Errorf("ObfuscateText called %d times, want 1", o.calls.Load())
	}
}

func TestList(t *testing.T) {
	source := []string{"foo", "bar"}
	l := ObfuscateList(edges, source, upper)
	source[0] = "changed"

	if l.String() != "[F***O B***R]" {
		t.Errorf("String() = %q, want %q", l.String(), "[F***O B***R]")
	}
	if l.Len() != 2 || l.At(0) != "foo" || l.At(1) != "bar" {
		t.Errorf("values = %v", l.Values())
	}

	var seen []string
	for i, v := range l.All() {
		if l.At(i) != v {
			t.Errorf("All() index %d = %q", i, v)
		}
		seen = append(seen, v)
	}
	if !slices.Equal(seen, []string{"foo", "bar"}) {
		t.Errorf("All() = %v", seen)
	}

	values := l.Values()
	values[0] = "mutated"
	if l.At(0) != "foo" {
		t.Error("Values() should return a copy")
	}

	if unmasked := ListOf([]int{1, 2}); unmasked.String() != "[1 2]" {
		t.Errorf("ListOf().String() = %q", unmasked.String())
	}
	if absent := ListOf[int](nil); absent.Valid() || absent.String() != "" {
		t.Error("ListOf(nil) should be absent")
	}
	if empty := ListOf([]int{}); !empty.Valid() || empty.String() != "[]" {
		t.Errorf("ListOf(empty) = %q, valid %v", empty.String(), empty.Valid())
	}
}

func TestCollection(t *testing.T) {
	c := ObfuscateCollection(All(), []int{10, 200}, Natural())

	if c.String() != "[** ***]" {
		t.Errorf("String() = %q, want %q", c.String(), "[** ***]")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got := slices.Collect(c.All()); !slices.Equal(got, []int{10, 200}) {
		t.Errorf("All() = %v", got)
	}
	if absent := CollectionOf[int](nil); absent.Valid() {
		t.Error("CollectionOf(nil) should be absent")
	}
}

func TestSet(t *testing.T) {
	s := ObfuscateSet(edges, []string{"foo", "bar", "foo"}, upper)

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !slices.Equal(s.Values(), []string{"foo", "bar"}) {
		t.Errorf("Values() = %v, want first-seen order", s.Values())
	}
	if !s.Contains("bar") || s.Contains("baz") {
		t.Error("Contains() mismatch")
	}
	if s.String() != "[F***O B***R]" {
		t.Errorf("String() = %q, want %q", s.String(), "[F***O B***R]")
	}
	if got := slices.Collect(s.All()); len(got) != 2 {
		t.Errorf("All() = %v", got)
	}
	if absent := SetOf[string](nil); absent.Valid() || absent.Contains("x") {
		t.Error("SetOf(nil) should be absent")
	}
}

func TestMap(t *testing.T) {
	m := ObfuscateMap(edges, map[int]int{1: 2}, negate)

	if m.String() != "map[1:-***2]" {
		t.Errorf("String() = %q, want %q", m.String(), "map[1:-***2]")
	}
	if v, ok := m.Get(1); !ok || v != 2 {
		t.Errorf("Get(1) = %d, %v", v, ok)
	}
	if _, ok := m.Get(3); ok {
		t.Error("Get(3) should be absent")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	for k, v := range m.All() {
		if k != 1 || v != 2 {
			t.Errorf("All() = %d:%d", k, v)
		}
	}

	keys := ObfuscateMap(All(), map[string]string{"user": "secret", "id": "x"}, Natural())
	if keys.String() != "map[id:* user:******]" {
		t.Errorf("String() = %q, keys must stay unmasked", keys.String())
	}

	if plain := MapOf(map[string]int{"b": 2, "a": 1}); plain.String() != "map[a:1 b:2]" {
		t.Errorf("MapOf().String() = %q", plain.String())
	}
	if absent := MapOf[string, int](nil); absent.Valid() || absent.String() != "" {
		t.Error("MapOf(nil) should be absent")
	}
}

func TestShapeOf(t *testing.T) {
	tests := []struct {
		name    string
		typ     reflect.Type
		shape   Shape
		subject string
	}{
		{"single", reflect.TypeFor[Obfuscated[string]](), ShapeSingle, "string"},
		{"pointer single", reflect.TypeFor[*Obfuscated[int]](), ShapeSingle, "int"},
		{"list", reflect.TypeFor[List[int]](), ShapeList, "int"},
		{"set", reflect.TypeFor[Set[string]](), ShapeSet, "string"},
		{"collection", reflect.TypeFor[Collection[bool]](), ShapeCollection, "bool"},
		{"map value type", reflect.TypeFor[Map[string, float64]](), ShapeMap, "float64"},
		{"plain", reflect.TypeFor[string](), ShapeNone, ""},
		{"slice", reflect.TypeFor[[]string](), ShapeNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, subject := ShapeOf(tt.typ)
			if shape != tt.shape {
				t.Errorf("shape = %s, want %s", shape, tt.shape)
			}
			name := ""
			if subject != nil {
				name = subject.String()
			}
			if name != tt.subject {
				t.Errorf("subject = %q, want %q", name, tt.subject)
			}
		})
	}

	if shape, _ := ShapeOf(nil); shape != ShapeNone {
		t.Errorf("ShapeOf(nil) = %s", shape)
	}
}
