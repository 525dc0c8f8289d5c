// Package xml provides an XML codec implementation.
package xml

import (
	"encoding/xml"

	"github.com/zoobzio/shroud"
)

// xmlCodec implements shroud.Codec for XML.
type xmlCodec struct {
	prefix string
	indent string
}

// New returns an XML codec.
func New() shroud.Codec {
	return &xmlCodec{}
}

// Indent returns an XML codec that writes one element per line, each prefixed
// by prefix and indented by indent per level.
func Indent(prefix, indent string) shroud.Codec {
	return &xmlCodec{prefix: prefix, indent: indent}
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return "application/xml"
}

// Marshal encodes v as XML.
func (c *xmlCodec) Marshal(v any) ([]byte, error) {
	if c.prefix == "" && c.indent == "" {
		return xml.Marshal(v)
	}
	return xml.MarshalIndent(v, c.prefix, c.indent)
}

// Unmarshal decodes XML data into v.
func (c *xmlCodec) Unmarshal(data []byte, v any) error {
	return xml.Unmarshal(data, v)
}
