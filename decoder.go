package shroud

import (
	"fmt"
	"reflect"
)

// Decoder is a wrapping decoder: it applies a Decision to a field after the
// codec has decoded the raw value. Decoders are immutable and shared by every
// decode of their struct type.
type Decoder struct {
	shape    Shape
	decision Decision
	subject  reflect.Type
	path     string
	apply    func(target any, d Decision) bool
}

func newDecoder(shape Shape, d Decision, subject reflect.Type, path string) *Decoder {
	dec := &Decoder{shape: shape, decision: d, subject: subject, path: path}
	switch shape {
	case ShapeSingle:
		dec.apply = decodeSingle
	case ShapeList, ShapeSet, ShapeCollection:
		dec.apply = decodeElements
	case ShapeMap:
		dec.apply = decodeValues
	}
	return dec
}

// decodeSingle masks the whole value.
func decodeSingle(target any, d Decision) bool {
	t, ok := target.(wholeTarget)
	if ok {
		t.obfuscateWhole(d)
	}
	return ok
}

// decodeElements masks each element of a List, Set or Collection.
func decodeElements(target any, d Decision) bool {
	t, ok := target.(elementsTarget)
	if ok {
		t.obfuscateElements(d)
	}
	return ok
}

// decodeValues masks each value of a Map, leaving keys alone.
func decodeValues(target any, d Decision) bool {
	t, ok := target.(valuesTarget)
	if ok {
		t.obfuscateValues(d)
	}
	return ok
}

// Shape returns the shape the decoder handles.
func (d *Decoder) Shape() Shape { return d.shape }

// Decision returns the policy the decoder applies.
func (d *Decoder) Decision() Decision { return d.decision }

// Subject returns the wrapped, element or value type.
func (d *Decoder) Subject() reflect.Type { return d.subject }

// Path returns the dotted path of the field.
func (d *Decoder) Path() string { return d.path }

// Decode applies the decision to the field held in v, which must be
// addressable or a pointer. A nil pointer and an absent value are left alone.
func (d *Decoder) Decode(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.CanAddr() {
		return &DecodeError{Path: d.path, Shape: d.shape, Subject: d.subject, Cause: fmt.Errorf("%w: %s is not addressable", ErrShapeMismatch, v.Type())}
	}

	shape, subject := ShapeOf(v.Type())
	if shape != d.shape || subject != d.subject || d.apply == nil {
		return &DecodeError{Path: d.path, Shape: d.shape, Subject: d.subject, Cause: fmt.Errorf("%w: want %s, got %s", ErrShapeMismatch, d.shape, shape)}
	}
	if !d.apply(v.Addr().Interface(), d.decision) {
		return &DecodeError{Path: d.path, Shape: d.shape, Subject: d.subject, Cause: fmt.Errorf("%w: %s cannot hold a %s", ErrShapeMismatch, v.Type(), d.shape)}
	}
	return nil
}
