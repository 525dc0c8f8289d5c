// Package json provides JSON codec implementations.
package json

import (
	"encoding/json"

	gojson "github.com/goccy/go-json"
	"github.com/zoobzio/shroud"
)

// jsonCodec implements shroud.Codec with encoding/json.
type jsonCodec struct{}

// New returns a JSON codec backed by encoding/json.
func New() shroud.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// fastCodec implements shroud.Codec with goccy/go-json.
type fastCodec struct{}

// Fast returns a JSON codec backed by github.com/goccy/go-json. It honors the
// same Marshaler and Unmarshaler hooks as New.
func Fast() shroud.Codec {
	return &fastCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *fastCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *fastCodec) Marshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *fastCodec) Unmarshal(data []byte, v any) error {
	return gojson.Unmarshal(data, v)
}
