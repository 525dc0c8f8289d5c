// Package cbor provides a CBOR codec implementation.
package cbor

import (
	"github.com/ugorji/go/codec"
	"github.com/zoobzio/shroud"
)

// cborCodec implements shroud.Codec for CBOR.
type cborCodec struct {
	handle *codec.CborHandle
}

// New returns a CBOR codec. Field names come from codec struct tags, falling
// back to json tags.
func New() shroud.Codec {
	return &cborCodec{handle: &codec.CborHandle{}}
}

// ContentType returns the MIME type for CBOR.
func (c *cborCodec) ContentType() string {
	return "application/cbor"
}

// Marshal encodes v as CBOR.
func (c *cborCodec) Marshal(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, c.handle).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal decodes CBOR data into v.
func (c *cborCodec) Unmarshal(data []byte, v any) error {
	if err := codec.NewDecoderBytes(data, c.handle).Decode(v); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// decodeError keeps the codec's message and unwraps to the error it reports,
// which the codec itself only exposes through Cause.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return e.err.Error()
}

func (e *decodeError) Unwrap() error {
	if c, ok := e.err.(interface{ Cause() error }); ok {
		return c.Cause()
	}
	return e.err
}
