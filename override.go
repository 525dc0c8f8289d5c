package shroud

import "reflect"

// Override interfaces let a subject type declare its own masking policy.
// They are consulted for fields without the matching tag, before type-specific
// defaults registered on the module, and follow the same RequireObfuscatorTag
// rule as those defaults.
//
// The methods are called once per property while a plan is built, on a pointer
// to a zero value of the subject type, so implementations must not depend on
// the receiver's contents.

// ObfuscatorProvider is implemented by subject types that choose their own
// obfuscator.
type ObfuscatorProvider interface {
	// MaskObfuscator returns the obfuscator for values of the receiver's type,
	// or nil to defer to the module.
	MaskObfuscator() Obfuscator
}

// RepresentationProvider is implemented by subject types that choose their own
// text form.
type RepresentationProvider interface {
	// MaskRepresentation returns the representation for values of the
	// receiver's type, or nil to defer to the module.
	MaskRepresentation() Representation
}

// provided returns the P implemented by subject type t, if any. Pointer
// subjects are checked through their element type; interface subjects never
// provide.
func provided[P any](t reflect.Type) (P, bool) {
	var zero P
	if t == nil {
		return zero, false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		return zero, false
	}
	p, ok := reflect.New(t).Interface().(P)
	return p, ok
}

func providedObfuscator(t reflect.Type) Obfuscator {
	if p, ok := provided[ObfuscatorProvider](t); ok {
		return p.MaskObfuscator()
	}
	return nil
}

func providedRepresentation(t reflect.Type) Representation {
	if p, ok := provided[RepresentationProvider](t); ok {
		return p.MaskRepresentation()
	}
	return nil
}
