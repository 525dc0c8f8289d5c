// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/shroud"
)

// msgpackCodec implements shroud.Codec for MessagePack.
type msgpackCodec struct {
	structTag string
}

// New returns a MessagePack codec using msgpack struct tags.
func New() shroud.Codec {
	return &msgpackCodec{}
}

// WithStructTag returns a MessagePack codec that reads field names from the
// given struct tag, e.g. "json", so one set of tags serves several codecs.
func WithStructTag(tag string) shroud.Codec {
	return &msgpackCodec{structTag: tag}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes v as MessagePack.
func (c *msgpackCodec) Marshal(v any) ([]byte, error) {
	if c.structTag == "" {
		return msgpack.Marshal(v)
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag(c.structTag)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes MessagePack data into v.
func (c *msgpackCodec) Unmarshal(data []byte, v any) error {
	if c.structTag == "" {
		return msgpack.Unmarshal(data, v)
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag(c.structTag)
	return dec.Decode(v)
}
