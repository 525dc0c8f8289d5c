// Package shroud provides policy-driven masking of struct fields during decoding.
//
// Fields declared with one of the wrapped shapes are decoded normally by the
// configured codec and then wrapped so that their String form is masked while the
// real value stays available to the program:
//
//   - Obfuscated[T]    - a single value
//   - List[T]          - an ordered list of values, masked elementwise
//   - Set[T]           - a deduplicated set of values, masked elementwise
//   - Collection[T]    - an unindexed collection of values, masked elementwise
//   - Map[K, V]        - a map whose values are masked; keys are never masked
//
// Encoding always writes the unmasked value, so the wire format does not depend
// on the masking policy.
//
// # Tag Syntax
//
// Field behavior is declared via struct tags:
//
//	type Account struct {
//	    ID     string                    `json:"id"`
//	    PIN    shroud.Obfuscated[string] `json:"pin" obfuscate:"fixed-length(4)"`
//	    Emails shroud.List[string]       `json:"emails" obfuscate:"email"`
//	    Notes  shroud.Map[string, int]   `json:"notes" obfuscate:"all" represent:"quote"`
//	}
//
// The obfuscate tag names a masking policy, the represent tag names the function
// that renders a value as text before it is masked.
//
// # Resolution
//
// For every wrapped field the obfuscator is resolved in this order:
//
//  1. the obfuscate tag on the field
//  2. a type-specific default registered for the subject type, its embedded
//     supertypes or its interfaces
//  3. the module's global default (single values only)
//
// A List, Set, Collection or Map without a resolved obfuscator is left unmasked.
// With RequireObfuscatorTag(true), containers only consult the tag.
//
// # Basic Usage
//
//	module, _ := shroud.NewModule(
//	    shroud.ObfuscatorFor[time.Time](shroud.Portion(shroud.PortionOptions{KeepAtStart: 4})),
//	)
//
//	proc, _ := shroud.NewProcessor[Account](json.New(), module)
//
//	account, _ := proc.Decode(ctx, body)
//	fmt.Println(account.PIN)          // ***
//	fmt.Println(account.PIN.Value())  // 1234
//
//	data, _ := proc.Encode(ctx, account) // {"pin":"1234",...}
//
// # Codec Providers
//
// The following codec implementations are available as subpackages:
//
//   - json - JSON encoding (application/json), encoding/json or goccy/go-json
//   - yaml - YAML encoding (application/yaml)
//   - msgpack - MessagePack encoding (application/msgpack)
//   - bson - BSON encoding (application/bson)
//   - cbor - CBOR encoding (application/cbor)
//   - xml - XML encoding (application/xml)
package shroud

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}
