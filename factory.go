package shroud

import (
	"encoding/hex"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Tag keys read from struct fields.
const (
	TagObfuscate = "obfuscate"
	TagRepresent = "represent"
)

// TagSpec is a parsed tag value of the form name or name(arg, key=value, ...).
type TagSpec struct {
	Name   string
	Args   []string          // Positional arguments
	Params map[string]string // key=value arguments
	Raw    string            // Unsplit text between the parentheses
}

// Param returns the named argument, or the positional argument at pos when the
// name is absent. pos < 0 disables the positional fallback.
func (s TagSpec) Param(name string, pos int) (string, bool) {
	if v, ok := s.Params[name]; ok {
		return v, true
	}
	if pos >= 0 && pos < len(s.Args) {
		return s.Args[pos], true
	}
	return "", false
}

// ParseTagSpec parses a tag value.
func ParseTagSpec(tag string) (TagSpec, error) {
	tag = strings.TrimSpace(tag)
	name, rest, hasArgs := strings.Cut(tag, "(")
	spec := TagSpec{Name: strings.TrimSpace(name)}
	if spec.Name == "" {
		return spec, fmt.Errorf("%w: empty name in %q", ErrInvalidTag, tag)
	}
	if !hasArgs {
		if strings.ContainsAny(tag, ")") {
			return spec, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidTag, tag)
		}
		return spec, nil
	}

	body, ok := strings.CutSuffix(rest, ")")
	if !ok {
		return spec, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidTag, tag)
	}
	spec.Raw = strings.TrimSpace(body)
	if spec.Raw == "" {
		return spec, nil
	}

	for _, arg := range strings.Split(body, ",") {
		arg = strings.TrimSpace(arg)
		if k, v, isParam := strings.Cut(arg, "="); isParam {
			if spec.Params == nil {
				spec.Params = make(map[string]string)
			}
			spec.Params[strings.TrimSpace(k)] = strings.TrimSpace(v)
			continue
		}
		spec.Args = append(spec.Args, arg)
	}
	return spec, nil
}

// ObfuscatorConstructor builds an obfuscator from a tag.
type ObfuscatorConstructor func(spec TagSpec) (Obfuscator, error)

// RepresentationConstructor builds a representation from a tag.
type RepresentationConstructor func(spec TagSpec) (Representation, error)

// ObjectFactory constructs the obfuscators and representations referenced by
// struct tags. Construction errors are returned to the caller as is.
type ObjectFactory interface {
	Obfuscator(spec TagSpec) (Obfuscator, error)
	Representation(spec TagSpec) (Representation, error)
}

// ConstructorFactory is an ObjectFactory backed by named constructors.
type ConstructorFactory struct {
	obfuscators     map[string]ObfuscatorConstructor
	representations map[string]RepresentationConstructor
}

// NewConstructorFactory returns a factory with the built-in constructors plus
// the given ones; given constructors replace built-ins of the same name.
func NewConstructorFactory(obfuscators map[string]ObfuscatorConstructor, representations map[string]RepresentationConstructor) *ConstructorFactory {
	f := &ConstructorFactory{
		obfuscators:     builtinObfuscatorConstructors(),
		representations: builtinRepresentationConstructors(),
	}
	maps.Copy(f.obfuscators, obfuscators)
	maps.Copy(f.representations, representations)
	return f
}

// Obfuscator constructs the obfuscator named by spec.
func (f *ConstructorFactory) Obfuscator(spec TagSpec) (Obfuscator, error) {
	ctor, ok := f.obfuscators[spec.Name]
	if !ok {
		return nil, newConstructionError(ErrUnknownObfuscator, "obfuscator", spec.Name, nil)
	}
	o, err := ctor(spec)
	if err != nil {
		return nil, newConstructionError(ErrConstruct, "obfuscator", spec.Name, err)
	}
	if o == nil {
		return nil, newConstructionError(ErrConstruct, "obfuscator", spec.Name, ErrNilObfuscator)
	}
	return o, nil
}

// Representation constructs the representation named by spec.
func (f *ConstructorFactory) Representation(spec TagSpec) (Representation, error) {
	ctor, ok := f.representations[spec.Name]
	if !ok {
		return nil, newConstructionError(ErrUnknownRepresentation, "representation", spec.Name, nil)
	}
	r, err := ctor(spec)
	if err != nil {
		return nil, newConstructionError(ErrConstruct, "representation", spec.Name, err)
	}
	if r == nil {
		return nil, newConstructionError(ErrConstruct, "representation", spec.Name, ErrNilRepresentation)
	}
	return r, nil
}

// Built-in obfuscator names usable in obfuscate tags.
const (
	ObfuscateNone        = "none"
	ObfuscateAll         = "all"
	ObfuscateFixedLength = "fixed-length"
	ObfuscateFixedValue  = "fixed-value"
	ObfuscatePortion     = "portion"
	ObfuscateSSN         = "ssn"
	ObfuscateEmail       = "email"
	ObfuscatePhone       = "phone"
	ObfuscateCard        = "card"
	ObfuscateIP          = "ip"
	ObfuscateUUID        = "uuid"
	ObfuscateIBAN        = "iban"
	ObfuscateName        = "name"
	ObfuscateSHA256      = "sha256"
	ObfuscateSHA512      = "sha512"
	ObfuscateBLAKE2b     = "blake2b"
)

// Built-in representation names usable in represent tags.
const (
	RepresentNatural = "natural"
	RepresentQuoted  = "quote"
)

func fixed(o Obfuscator) ObfuscatorConstructor {
	return func(TagSpec) (Obfuscator, error) { return o, nil }
}

func builtinObfuscatorConstructors() map[string]ObfuscatorConstructor {
	return map[string]ObfuscatorConstructor{
		ObfuscateNone:   fixed(None()),
		ObfuscateAll:    fixed(All()),
		ObfuscateSSN:    fixed(SSN()),
		ObfuscateEmail:  fixed(Email()),
		ObfuscatePhone:  fixed(Phone()),
		ObfuscateCard:   fixed(Card()),
		ObfuscateIP:     fixed(IP()),
		ObfuscateUUID:   fixed(UUID()),
		ObfuscateIBAN:   fixed(IBAN()),
		ObfuscateName:   fixed(Name()),
		ObfuscateSHA256: fixed(SHA256()),
		ObfuscateSHA512: fixed(SHA512()),
		ObfuscateFixedLength: func(spec TagSpec) (Obfuscator, error) {
			n, err := intParam(spec, "length", 0, true)
			if err != nil {
				return nil, err
			}
			return FixedLength(n), nil
		},
		ObfuscateFixedValue: func(spec TagSpec) (Obfuscator, error) {
			// The value may contain commas, so it is taken unsplit.
			v := spec.Raw
			if rest, named := strings.CutPrefix(v, "value="); named {
				v = strings.TrimSpace(rest)
			}
			if v == "" {
				v, _ = spec.Param("value", 0)
			}
			if v == "" {
				return nil, fmt.Errorf("%w: missing value", ErrInvalidTag)
			}
			return FixedValue(v), nil
		},
		ObfuscatePortion: func(spec TagSpec) (Obfuscator, error) {
			var opts PortionOptions
			var err error
			if opts.KeepAtStart, err = intParam(spec, "keepAtStart", -1, false); err != nil {
				return nil, err
			}
			if opts.KeepAtEnd, err = intParam(spec, "keepAtEnd", -1, false); err != nil {
				return nil, err
			}
			if opts.FixedTotalLength, err = intParam(spec, "fixedTotalLength", -1, false); err != nil {
				return nil, err
			}
			if mc, ok := spec.Param("maskChar", -1); ok {
				r, size := utf8.DecodeRuneInString(mc)
				if size == 0 || size != len(mc) {
					return nil, fmt.Errorf("%w: maskChar must be a single character, got %q", ErrInvalidTag, mc)
				}
				opts.MaskChar = r
			}
			if opts.FixedTotalLength > 0 && opts.FixedTotalLength < opts.KeepAtStart+opts.KeepAtEnd {
				return nil, fmt.Errorf("%w: fixedTotalLength %d is less than keepAtStart+keepAtEnd (%d)",
					ErrInvalidTag, opts.FixedTotalLength, opts.KeepAtStart+opts.KeepAtEnd)
			}
			return Portion(opts), nil
		},
		ObfuscateBLAKE2b: func(spec TagSpec) (Obfuscator, error) {
			var key []byte
			if k, ok := spec.Param("key", 0); ok {
				decoded, err := hex.DecodeString(k)
				if err != nil {
					return nil, fmt.Errorf("%w: key must be hex: %w", ErrInvalidTag, err)
				}
				key = decoded
			}
			return BLAKE2b(key)
		},
	}
}

func builtinRepresentationConstructors() map[string]RepresentationConstructor {
	return map[string]RepresentationConstructor{
		RepresentNatural: func(TagSpec) (Representation, error) { return Natural(), nil },
		RepresentQuoted:  func(TagSpec) (Representation, error) { return Quoted(), nil },
	}
}

// intParam reads a non-negative integer argument.
func intParam(spec TagSpec, name string, pos int, required bool) (int, error) {
	raw, ok := spec.Param(name, pos)
	if !ok {
		if required {
			return 0, fmt.Errorf("%w: missing %s", ErrInvalidTag, name)
		}
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidTag, name, raw)
	}
	return n, nil
}
