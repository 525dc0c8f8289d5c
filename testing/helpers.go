// Package testing provides test utilities for shroud.
package testing

import (
	"sync/atomic"
	"testing"

	"github.com/zoobzio/shroud"
	"github.com/zoobzio/shroud/bson"
	"github.com/zoobzio/shroud/cbor"
	"github.com/zoobzio/shroud/json"
	"github.com/zoobzio/shroud/msgpack"
	"github.com/zoobzio/shroud/xml"
	"github.com/zoobzio/shroud/yaml"
)

// Codecs returns every codec implementation, keyed by a short name.
// The msgpack and cbor codecs read json tags so fixtures need a single set of
// tags. The xml codec uses field names.
func Codecs() map[string]shroud.Codec {
	return map[string]shroud.Codec{
		"json":      json.New(),
		"json-fast": json.Fast(),
		"yaml":      yaml.New(),
		"msgpack":   msgpack.WithStructTag("json"),
		"bson":      bson.New(),
		"cbor":      cbor.New(),
		"xml":       xml.New(),
	}
}

// Address is a nested fixture reached through a pointer.
type Address struct {
	Street shroud.Obfuscated[string] `json:"street"`
	City   string                    `json:"city"`
}

// Customer is a fixture exercising every wrapped shape.
type Customer struct {
	ID      string                     `json:"id"`
	Email   shroud.Obfuscated[string]  `json:"email" obfuscate:"email"`
	PIN     shroud.Obfuscated[string]  `json:"pin"`
	Phones  shroud.List[string]        `json:"phones" obfuscate:"phone"`
	Roles   shroud.Set[string]         `json:"roles"`
	Scores  shroud.Collection[int]     `json:"scores" obfuscate:"all"`
	Notes   shroud.Map[string, string] `json:"notes" obfuscate:"fixed-length(5)" represent:"quote"`
	Address *Address                   `json:"address"`
}

// NewCustomer returns a fully populated Customer.
func NewCustomer() *Customer {
	return &Customer{
		ID:     "c-1",
		Email:  shroud.Of("alice@example.com"),
		PIN:    shroud.Of("4321"),
		Phones: shroud.ListOf([]string{"555-123-4567", "(555) 765-4321"}),
		Roles:  shroud.SetOf([]string{"admin", "user"}),
		Scores: shroud.CollectionOf([]int{7, 42}),
		Notes:  shroud.MapOf(map[string]string{"vip": "yes"}),
		Address: &Address{
			Street: shroud.Of("1 Main St"),
			City:   "Springfield",
		},
	}
}

// CountingFactory is an ObjectFactory that counts constructions.
type CountingFactory struct {
	inner           shroud.ObjectFactory
	obfuscators     atomic.Int64
	representations atomic.Int64
}

// NewCountingFactory wraps the built-in constructor factory.
func NewCountingFactory() *CountingFactory {
	return &CountingFactory{inner: shroud.NewConstructorFactory(nil, nil)}
}

// Obfuscator constructs and counts an obfuscator.
func (f *CountingFactory) Obfuscator(spec shroud.TagSpec) (shroud.Obfuscator, error) {
	f.obfuscators.Add(1)
	return f.inner.Obfuscator(spec)
}

// Representation constructs and counts a representation.
func (f *CountingFactory) Representation(spec shroud.TagSpec) (shroud.Representation, error) {
	f.representations.Add(1)
	return f.inner.Representation(spec)
}

// Obfuscators returns the number of obfuscator constructions.
func (f *CountingFactory) Obfuscators() int {
	return int(f.obfuscators.Load())
}

// Representations returns the number of representation constructions.
func (f *CountingFactory) Representations() int {
	return int(f.representations.Load())
}

// Module returns a module built from opts, failing the test on error.
func Module(t testing.TB, opts ...shroud.Option) *shroud.Module {
	t.Helper()
	m, err := shroud.NewModule(opts...)
	if err != nil {
		t.Fatalf("NewModule() error: %v", err)
	}
	return m
}

// Negate is a representation rendering the negated value of an int.
func Negate() shroud.Representation {
	return shroud.TypedRepresentation(func(v int) string {
		return shroud.Natural().Represent(-v)
	})
}
