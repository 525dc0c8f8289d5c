// Package bson provides a BSON codec implementation.
package bson

import (
	"github.com/zoobzio/shroud"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements shroud.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec. Input is validated as a complete document before
// any field is decoded.
func New() shroud.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as a BSON document.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes a BSON document into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	if err := bson.Raw(data).Validate(); err != nil {
		return err
	}
	return bson.Unmarshal(data, v)
}
