package shroud

import (
	"context"
	"fmt"
	"reflect"
)

// Decision is the masking policy resolved for one property.
type Decision struct {
	Obfuscator     Obfuscator
	Representation Representation
}

// Property describes one field of a struct type as seen by the resolver.
type Property struct {
	Name     string            // Go field name
	Path     string            // Dotted path from the root struct
	Type     reflect.Type      // Declared field type
	Shape    Shape             // Wrapped shape of Type, ShapeNone otherwise
	Subject  reflect.Type      // Wrapped, element or map value type
	Tags     map[string]string // obfuscate and represent tag values
	Index    []int             // reflect.Value.FieldByIndex access path
	Pointers []int             // positions in Index that hold a pointer to dereference
	Decoder  *Decoder          // Installed wrapping decoder, nil if the field is left alone
}

var shapedType = reflect.TypeFor[shaped]()

// ShapeOf classifies t and returns its subject type: the wrapped type of an
// Obfuscated, the element type of a List, Set or Collection, the value type of
// a Map. A pointer to a wrapped type has the shape of its element.
func ShapeOf(t reflect.Type) (Shape, reflect.Type) {
	if t == nil {
		return ShapeNone, nil
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if !t.Implements(shapedType) {
		return ShapeNone, nil
	}
	s, ok := reflect.Zero(t).Interface().(shaped)
	if !ok {
		return ShapeNone, nil
	}
	return s.shape(), s.subjectType()
}

// NewProperty describes a field of the given declared type.
func NewProperty(path string, t reflect.Type, tags map[string]string) Property {
	shape, subject := ShapeOf(t)
	name := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			name = path[i+1:]
			break
		}
	}
	return Property{
		Name:    name,
		Path:    path,
		Type:    t,
		Shape:   shape,
		Subject: subject,
		Tags:    tags,
	}
}

// Prepare resolves the masking policy of each property and installs the
// matching wrapping decoder. Properties that need no masking are returned
// unchanged. Construction errors abort preparation.
func (m *Module) Prepare(props []Property) ([]Property, error) {
	out := make([]Property, len(props))
	for i, p := range props {
		resolved, err := m.resolve(p)
		if err != nil {
			return nil, err
		}
		out[i] = resolved
		if resolved.Decoder != nil && resolved.Decoder != p.Decoder {
			emitPropertyObfuscated(context.Background(), resolved.Path, resolved.Shape, resolved.Subject)
		}
	}
	return out, nil
}

// resolve decides the Decision for p. Fallback happens only when a policy is
// absent, never on error.
func (m *Module) resolve(p Property) (Property, error) {
	if p.Shape == ShapeNone {
		return p, nil
	}
	inherit := !p.Shape.IsContainer() || !m.requireTag

	o, err := m.resolveObfuscator(p, inherit)
	if err != nil {
		return p, err
	}
	if o == nil {
		return p, nil
	}
	r, err := m.resolveRepresentation(p, inherit)
	if err != nil {
		return p, err
	}

	p.Decoder = newDecoder(p.Shape, Decision{Obfuscator: o, Representation: r}, p.Subject, p.Path)
	return p, nil
}

func (m *Module) resolveObfuscator(p Property, inherit bool) (Obfuscator, error) {
	if tag, ok := p.Tags[TagObfuscate]; ok {
		spec, err := ParseTagSpec(tag)
		if err != nil {
			return nil, withField(p.Path, err)
		}
		o, err := m.factory.Obfuscator(spec)
		if err != nil {
			return nil, withField(p.Path, err)
		}
		if o == nil {
			return nil, withField(p.Path, newConstructionError(ErrConstruct, "obfuscator", spec.Name, ErrNilObfuscator))
		}
		return o, nil
	}
	if inherit {
		if o := providedObfuscator(p.Subject); o != nil {
			return o, nil
		}
		if o, ok := m.obfuscators.lookup(p.Subject, m.graph); ok {
			return o, nil
		}
	}
	if p.Shape == ShapeSingle {
		return m.defaultObfuscator, nil
	}
	return nil, nil
}

func (m *Module) resolveRepresentation(p Property, inherit bool) (Representation, error) {
	if tag, ok := p.Tags[TagRepresent]; ok {
		spec, err := ParseTagSpec(tag)
		if err != nil {
			return nil, withField(p.Path, err)
		}
		r, err := m.factory.Representation(spec)
		if err != nil {
			return nil, withField(p.Path, err)
		}
		if r == nil {
			return nil, withField(p.Path, newConstructionError(ErrConstruct, "representation", spec.Name, ErrNilRepresentation))
		}
		return r, nil
	}
	if inherit {
		if r := providedRepresentation(p.Subject); r != nil {
			return r, nil
		}
		if r, ok := m.representations.lookup(p.Subject, m.graph); ok {
			return r, nil
		}
	}
	return Natural(), nil
}

// withField attaches the field path to a resolution error.
func withField(path string, err error) error {
	if ce, ok := err.(*ConstructionError); ok {
		if ce.Field != "" {
			return err
		}
		annotated := *ce
		annotated.Field = path
		return &annotated
	}
	return fmt.Errorf("field %s: %w", path, err)
}
