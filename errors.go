package shroud

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNilObfuscator indicates a nil obfuscator was registered.
	ErrNilObfuscator = errors.New("nil obfuscator")

	// ErrNilRepresentation indicates a nil representation was registered.
	ErrNilRepresentation = errors.New("nil representation")

	// ErrNilType indicates a type-specific default was registered for a nil type.
	ErrNilType = errors.New("nil type")

	// ErrNilConstructor indicates a nil constructor was registered.
	ErrNilConstructor = errors.New("nil constructor")

	// ErrConflictingFactory indicates constructors were registered alongside a
	// custom object factory.
	ErrConflictingFactory = errors.New("constructors cannot be combined with a custom object factory")

	// ErrInvalidTag indicates a struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnknownObfuscator indicates a tag names an obfuscator with no constructor.
	ErrUnknownObfuscator = errors.New("unknown obfuscator")

	// ErrUnknownRepresentation indicates a tag names a representation with no constructor.
	ErrUnknownRepresentation = errors.New("unknown representation")

	// ErrConstruct indicates a constructor failed.
	ErrConstruct = errors.New("construct failed")

	// ErrNotStruct indicates a processor was requested for a non-struct type.
	ErrNotStruct = errors.New("not a struct")

	// ErrDecode indicates a wrapping decoder could not transform a field.
	ErrDecode = errors.New("decode failed")

	// ErrShapeMismatch indicates a decoder was applied to a field of another shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// ConfigError represents a module configuration error.
// It wraps a sentinel error with the option and type it concerns.
type ConfigError struct {
	Err    error        // Underlying sentinel error (ErrNilObfuscator, etc.)
	Option string       // Option that was rejected
	Type   reflect.Type // Type the option concerned, if any
}

func (e *ConfigError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("%s: %s (type %s)", e.Option, e.Err.Error(), e.Type)
	}
	return fmt.Sprintf("%s: %s", e.Option, e.Err.Error())
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ConstructionError represents a failure to construct a tag-referenced
// obfuscator or representation.
type ConstructionError struct {
	Err   error  // Underlying sentinel error (ErrUnknownObfuscator, ErrConstruct, etc.)
	Kind  string // "obfuscator" or "representation"
	Name  string // Constructor name from the tag
	Field string // Field path, when known
	Cause error  // Original error from the constructor
}

func (e *ConstructionError) Error() string {
	msg := fmt.Sprintf("%s %s %q", e.Err.Error(), e.Kind, e.Name)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the constructor's own error.
func (e *ConstructionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// DecodeError represents a failure to decode or transform a wrapped field. It
// names the subject type and the field path, never the wrapper type.
//
// Errors raised by a wrapped type's codec hook start without a path; a
// Processor fills it in when the decoded type has exactly one property of that
// shape and subject.
type DecodeError struct {
	Path    string       // Field path, empty when unknown
	Shape   Shape        // Shape of the wrapped field
	Subject reflect.Type // Element, value or wrapped type
	Cause   error        // Original error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode %s", e.Subject)
	if e.Path != "" {
		msg = fmt.Sprintf("decode field %s of type %s", e.Path, e.Subject)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes ErrDecode and the original error.
func (e *DecodeError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrDecode, e.Cause}
	}
	return []error{ErrDecode}
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

// Unwrap exposes the sentinel and the codec's own error, so errors.As can
// reach codec-specific types such as *json.UnmarshalTypeError.
func (e *CodecError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// newConfigError creates a ConfigError for a rejected option.
func newConfigError(sentinel error, option string, t reflect.Type) error {
	return &ConfigError{
		Err:    sentinel,
		Option: option,
		Type:   t,
	}
}

// newConstructionError creates a ConstructionError for factory failures.
func newConstructionError(sentinel error, kind, name string, cause error) error {
	return &ConstructionError{
		Err:   sentinel,
		Kind:  kind,
		Name:  name,
		Cause: cause,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}

// newHookError wraps an error raised while a codec hook decoded a payload.
func newHookError(shape Shape, subject reflect.Type, cause error) error {
	return &DecodeError{
		Shape:   shape,
		Subject: subject,
		Cause:   cause,
	}
}
