package shroud

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/ugorji/go/codec"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

// Codec hooks. Every wrapped type encodes as its unmasked payload and decodes the
// payload directly into the subject type. Decode errors are returned as a
// DecodeError naming the subject type rather than the wrapper. Decoded values
// carry no masking until a Processor applies the resolved decision.

var jsonNull = []byte("null")

func marshalJSON(valid bool, payload any) ([]byte, error) {
	if !valid {
		return jsonNull, nil
	}
	return json.Marshal(payload)
}

func unmarshalJSON[P any](data []byte) (P, bool, error) {
	var payload P
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return payload, false, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, false, err
	}
	return payload, true, nil
}

func marshalYAML(valid bool, payload any) (any, error) {
	if !valid {
		return nil, nil
	}
	return payload, nil
}

func unmarshalYAML[P any](node *yaml.Node) (P, bool, error) {
	var payload P
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return payload, false, nil
	}
	if err := node.Decode(&payload); err != nil {
		return payload, false, err
	}
	return payload, true, nil
}

func encodeMsgpack(enc *msgpack.Encoder, valid bool, payload any) error {
	if !valid {
		return enc.EncodeNil()
	}
	return enc.Encode(payload)
}

func decodeMsgpack[P any](dec *msgpack.Decoder) (P, bool, error) {
	var payload P
	code, err := dec.PeekCode()
	if err != nil {
		return payload, false, err
	}
	if code == msgpcode.Nil {
		return payload, false, dec.DecodeNil()
	}
	if err := dec.Decode(&payload); err != nil {
		return payload, false, err
	}
	return payload, true, nil
}

func marshalBSONValue(valid bool, payload any) (bsontype.Type, []byte, error) {
	if !valid {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(payload)
}

func unmarshalBSONValue[P any](t bsontype.Type, data []byte) (P, bool, error) {
	var payload P
	if t == bsontype.Null || t == bsontype.Undefined {
		return payload, false, nil
	}
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&payload); err != nil {
		return payload, false, err
	}
	return payload, true, nil
}

// ugorji codec reports hook errors by panicking; Decoder.Decode and
// Encoder.Encode recover them into returned errors.
func encodeSelf(e *codec.Encoder, valid bool, payload any) {
	if !valid {
		e.MustEncode(nil)
		return
	}
	e.MustEncode(payload)
}

// decodeSelf recovers the decoder's error panic so the hook can wrap the error
// and raise it again. Runtime errors are left for the codec to translate.
func decodeSelf[P any](d *codec.Decoder) (payload P, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, isErr := r.(error)
			if _, isRuntime := r.(runtime.Error); !isErr || isRuntime {
				panic(r)
			}
			err = e
		}
	}()

	var p *P
	d.MustDecode(&p)
	if p == nil {
		return payload, false, nil
	}
	return *p, true, nil
}

// XML has no null: an absent value writes no element and a missing element
// stays absent. Elements are written as <item> children and map entries as
// <entry> children holding <key> and <value>, ordered by key text.

type xmlItems[T any] struct {
	Items []T `xml:"item"`
}

type xmlEntry[K comparable, V any] struct {
	Key   K `xml:"key"`
	Value V `xml:"value"`
}

type xmlEntries[K comparable, V any] struct {
	Entries []xmlEntry[K, V] `xml:"entry"`
}

func marshalXMLItems[T any](e *xml.Encoder, start xml.StartElement, valid bool, values []T) error {
	if !valid {
		return nil
	}
	return e.EncodeElement(xmlItems[T]{Items: values}, start)
}

func unmarshalXMLItems[T any](d *xml.Decoder, start xml.StartElement) ([]T, bool, error) {
	var items xmlItems[T]
	if err := d.DecodeElement(&items, &start); err != nil {
		return nil, false, err
	}
	return items.Items, true, nil
}

// MarshalJSON writes the unmasked value.
func (o Obfuscated[T]) MarshalJSON() ([]byte, error) {
	return marshalJSON(o.valid, o.value)
}

// UnmarshalJSON decodes the value without masking.
func (o *Obfuscated[T]) UnmarshalJSON(data []byte) error {
	v, ok, err := unmarshalJSON[T](data)
	return o.set(v, ok, err)
}

// MarshalYAML writes the unmasked value.
func (o Obfuscated[T]) MarshalYAML() (any, error) {
	return marshalYAML(o.valid, o.value)
}

// UnmarshalYAML decodes the value without masking.
func (o *Obfuscated[T]) UnmarshalYAML(node *yaml.Node) error {
	v, ok, err := unmarshalYAML[T](node)
	return o.set(v, ok, err)
}

// EncodeMsgpack writes the unmasked value.
func (o Obfuscated[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeMsgpack(enc, o.valid, o.value)
}

// DecodeMsgpack decodes the value without masking.
func (o *Obfuscated[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, ok, err := decodeMsgpack[T](dec)
	return o.set(v, ok, err)
}

// MarshalBSONValue writes the unmasked value.
func (o Obfuscated[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return marshalBSONValue(o.valid, o.value)
}

// UnmarshalBSONValue decodes the value without masking.
func (o *Obfuscated[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v, ok, err := unmarshalBSONValue[T](t, data)
	return o.set(v, ok, err)
}

// CodecEncodeSelf writes the unmasked value.
func (o Obfuscated[T]) CodecEncodeSelf(e *codec.Encoder) {
	encodeSelf(e, o.valid, o.value)
}

// CodecDecodeSelf decodes the value without masking.
func (o *Obfuscated[T]) CodecDecodeSelf(d *codec.Decoder) {
	if err := o.set(decodeSelf[T](d)); err != nil {
		panic(err)
	}
}

// MarshalXML writes the unmasked value, or nothing when absent.
func (o Obfuscated[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if !o.valid {
		return nil
	}
	return e.EncodeElement(o.value, start)
}

// UnmarshalXML decodes the value without masking.
func (o *Obfuscated[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var v T
	err := d.DecodeElement(&v, &start)
	return o.set(v, err == nil, err)
}

func (o *Obfuscated[T]) set(v T, ok bool, err error) error {
	if err != nil {
		return newHookError(ShapeSingle, reflect.TypeFor[T](), err)
	}
	if !ok {
		*o = Obfuscated[T]{}
		return nil
	}
	*o = Of(v)
	return nil
}

// MarshalJSON writes the unmasked values.
func (l List[T]) MarshalJSON() ([]byte, error) {
	return marshalJSON(l.valid, l.values)
}

// UnmarshalJSON decodes the values without masking.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	v, ok, err := unmarshalJSON[[]T](data)
	return l.set(v, ok, err)
}

// MarshalYAML writes the unmasked values.
func (l List[T]) MarshalYAML() (any, error) {
	return marshalYAML(l.valid, l.values)
}

// UnmarshalYAML decodes the values without masking.
func (l *List[T]) UnmarshalYAML(node *yaml.Node) error {
	v, ok, err := unmarshalYAML[[]T](node)
	return l.set(v, ok, err)
}

// EncodeMsgpack writes the unmasked values.
func (l List[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeMsgpack(enc, l.valid, l.values)
}

// DecodeMsgpack decodes the values without masking.
func (l *List[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, ok, err := decodeMsgpack[[]T](dec)
	return l.set(v, ok, err)
}

// MarshalBSONValue writes the unmasked values.
func (l List[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return marshalBSONValue(l.valid, l.values)
}

// UnmarshalBSONValue decodes the values without masking.
func (l *List[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v, ok, err := unmarshalBSONValue[[]T](t, data)
	return l.set(v, ok, err)
}

// CodecEncodeSelf writes the unmasked values.
func (l List[T]) CodecEncodeSelf(e *codec.Encoder) {
	encodeSelf(e, l.valid, l.values)
}

// CodecDecodeSelf decodes the values without masking.
func (l *List[T]) CodecDecodeSelf(d *codec.Decoder) {
	if err := l.set(decodeSelf[[]T](d)); err != nil {
		panic(err)
	}
}

// MarshalXML writes the unmasked values as item elements.
func (l List[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return marshalXMLItems(e, start, l.valid, l.values)
}

// UnmarshalXML decodes the values without masking.
func (l *List[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return l.set(unmarshalXMLItems[T](d, start))
}

func (l *List[T]) set(v []T, ok bool, err error) error {
	if err != nil {
		return newHookError(ShapeList, reflect.TypeFor[T](), err)
	}
	if !ok {
		*l = List[T]{}
		return nil
	}
	*l = List[T]{values: nonNil(v), valid: true}
	return nil
}

// MarshalJSON writes the unmasked values.
func (c Collection[T]) MarshalJSON() ([]byte, error) {
	return marshalJSON(c.valid, c.values)
}

// UnmarshalJSON decodes the values without masking.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	v, ok, err := unmarshalJSON[[]T](data)
	return c.set(v, ok, err)
}

// MarshalYAML writes the unmasked values.
func (c Collection[T]) MarshalYAML() (any, error) {
	return marshalYAML(c.valid, c.values)
}

// UnmarshalYAML decodes the values without masking.
func (c *Collection[T]) UnmarshalYAML(node *yaml.Node) error {
	v, ok, err := unmarshalYAML[[]T](node)
	return c.set(v, ok, err)
}

// EncodeMsgpack writes the unmasked values.
func (c Collection[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeMsgpack(enc, c.valid, c.values)
}

// DecodeMsgpack decodes the values without masking.
func (c *Collection[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, ok, err := decodeMsgpack[[]T](dec)
	return c.set(v, ok, err)
}

// MarshalBSONValue writes the unmasked values.
func (c Collection[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return marshalBSONValue(c.valid, c.values)
}

// UnmarshalBSONValue decodes the values without masking.
func (c *Collection[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v, ok, err := unmarshalBSONValue[[]T](t, data)
	return c.set(v, ok, err)
}

// CodecEncodeSelf writes the unmasked values.
func (c Collection[T]) CodecEncodeSelf(e *codec.Encoder) {
	encodeSelf(e, c.valid, c.values)
}

// CodecDecodeSelf decodes the values without masking.
func (c *Collection[T]) CodecDecodeSelf(d *codec.Decoder) {
	if err := c.set(decodeSelf[[]T](d)); err != nil {
		panic(err)
	}
}

// MarshalXML writes the unmasked values as item elements.
func (c Collection[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return marshalXMLItems(e, start, c.valid, c.values)
}

// UnmarshalXML decodes the values without masking.
func (c *Collection[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return c.set(unmarshalXMLItems[T](d, start))
}

func (c *Collection[T]) set(v []T, ok bool, err error) error {
	if err != nil {
		return newHookError(ShapeCollection, reflect.TypeFor[T](), err)
	}
	if !ok {
		*c = Collection[T]{}
		return nil
	}
	*c = Collection[T]{values: nonNil(v), valid: true}
	return nil
}

// MarshalJSON writes the unmasked values.
func (s Set[T]) MarshalJSON() ([]byte, error) {
	return marshalJSON(s.valid, s.values)
}

// UnmarshalJSON decodes the values without masking.
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	v, ok, err := unmarshalJSON[[]T](data)
	return s.set(v, ok, err)
}

// MarshalYAML writes the unmasked values.
func (s Set[T]) MarshalYAML() (any, error) {
	return marshalYAML(s.valid, s.values)
}

// UnmarshalYAML decodes the values without masking.
func (s *Set[T]) UnmarshalYAML(node *yaml.Node) error {
	v, ok, err := unmarshalYAML[[]T](node)
	return s.set(v, ok, err)
}

// EncodeMsgpack writes the unmasked values.
func (s Set[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeMsgpack(enc, s.valid, s.values)
}

// DecodeMsgpack decodes the values without masking.
func (s *Set[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, ok, err := decodeMsgpack[[]T](dec)
	return s.set(v, ok, err)
}

// MarshalBSONValue writes the unmasked values.
func (s Set[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return marshalBSONValue(s.valid, s.values)
}

// UnmarshalBSONValue decodes the values without masking.
func (s *Set[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v, ok, err := unmarshalBSONValue[[]T](t, data)
	return s.set(v, ok, err)
}

// CodecEncodeSelf writes the unmasked values.
func (s Set[T]) CodecEncodeSelf(e *codec.Encoder) {
	encodeSelf(e, s.valid, s.values)
}

// CodecDecodeSelf decodes the values without masking.
func (s *Set[T]) CodecDecodeSelf(d *codec.Decoder) {
	if err := s.set(decodeSelf[[]T](d)); err != nil {
		panic(err)
	}
}

// MarshalXML writes the unmasked values as item elements.
func (s Set[T]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return marshalXMLItems(e, start, s.valid, s.values)
}

// UnmarshalXML decodes the values without masking.
func (s *Set[T]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return s.set(unmarshalXMLItems[T](d, start))
}

func (s *Set[T]) set(v []T, ok bool, err error) error {
	if err != nil {
		return newHookError(ShapeSet, reflect.TypeFor[T](), err)
	}
	if !ok {
		*s = Set[T]{}
		return nil
	}
	*s = SetOf(nonNil(v))
	return nil
}

// MarshalJSON writes the unmasked entries.
func (m Map[K, V]) MarshalJSON() ([]byte, error) {
	return marshalJSON(m.valid, m.entries)
}

// UnmarshalJSON decodes the entries without masking.
func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	v, ok, err := unmarshalJSON[map[K]V](data)
	return m.set(v, ok, err)
}

// MarshalYAML writes the unmasked entries.
func (m Map[K, V]) MarshalYAML() (any, error) {
	return marshalYAML(m.valid, m.entries)
}

// UnmarshalYAML decodes the entries without masking.
func (m *Map[K, V]) UnmarshalYAML(node *yaml.Node) error {
	v, ok, err := unmarshalYAML[map[K]V](node)
	return m.set(v, ok, err)
}

// EncodeMsgpack writes the unmasked entries.
func (m Map[K, V]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeMsgpack(enc, m.valid, m.entries)
}

// DecodeMsgpack decodes the entries without masking.
func (m *Map[K, V]) DecodeMsgpack(dec *msgpack.Decoder) error {
	v, ok, err := decodeMsgpack[map[K]V](dec)
	return m.set(v, ok, err)
}

// MarshalBSONValue writes the unmasked entries.
func (m Map[K, V]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return marshalBSONValue(m.valid, m.entries)
}

// UnmarshalBSONValue decodes the entries without masking.
func (m *Map[K, V]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v, ok, err := unmarshalBSONValue[map[K]V](t, data)
	return m.set(v, ok, err)
}

// CodecEncodeSelf writes the unmasked entries.
func (m Map[K, V]) CodecEncodeSelf(e *codec.Encoder) {
	encodeSelf(e, m.valid, m.entries)
}

// CodecDecodeSelf decodes the entries without masking.
func (m *Map[K, V]) CodecDecodeSelf(d *codec.Decoder) {
	if err := m.set(decodeSelf[map[K]V](d)); err != nil {
		panic(err)
	}
}

// MarshalXML writes the unmasked entries as entry elements.
func (m Map[K, V]) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if !m.valid {
		return nil
	}
	entries := make([]xmlEntry[K, V], 0, len(m.entries))
	for k, v := range m.entries {
		entries = append(entries, xmlEntry[K, V]{Key: k, Value: v})
	}
	slices.SortFunc(entries, func(a, b xmlEntry[K, V]) int {
		return strings.Compare(fmt.Sprint(a.Key), fmt.Sprint(b.Key))
	})
	return e.EncodeElement(xmlEntries[K, V]{Entries: entries}, start)
}

// UnmarshalXML decodes the entries without masking.
func (m *Map[K, V]) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var entries xmlEntries[K, V]
	if err := d.DecodeElement(&entries, &start); err != nil {
		return m.set(nil, false, err)
	}
	v := make(map[K]V, len(entries.Entries))
	for _, entry := range entries.Entries {
		v[entry.Key] = entry.Value
	}
	return m.set(v, true, nil)
}

func (m *Map[K, V]) set(v map[K]V, ok bool, err error) error {
	if err != nil {
		return newHookError(ShapeMap, reflect.TypeFor[V](), err)
	}
	if !ok {
		*m = Map[K, V]{}
		return nil
	}
	if v == nil {
		v = map[K]V{}
	}
	*m = Map[K, V]{entries: v, valid: true}
	return nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
