package shroud

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register masking tags with sentinel
	sentinel.Tag(TagObfuscate)
	sentinel.Tag(TagRepresent)
}

// Processor decodes and encodes values of type T with a codec and applies the
// module's masking policy to wrapped fields after every decode.
//
// Processors are immutable and safe for concurrent use. Field plans are built
// once per type and module and shared by every processor for that pair.
type Processor[T any] struct {
	codec  Codec
	module *Module
	plan   *typePlan
}

// typePlan holds the prepared properties of one struct type.
type typePlan struct {
	typeName   string
	properties []Property
	masked     []Property    // properties with an installed decoder
	nested     []nestedField // fields holding structs inside containers or wrapped subjects
}

// nestedField is a field whose elements, map values or wrapped subject are
// structs with a plan of their own.
type nestedField struct {
	path     string
	index    []int
	pointers []int
	elem     reflect.Type
}

// empty reports whether applying the plan can change anything.
func (p *typePlan) empty() bool {
	return len(p.masked) == 0 && len(p.nested) == 0
}

// NewProcessor creates a Processor for struct type T. A nil module means
// DefaultModule. Tag errors are reported here, not at decode time.
func NewProcessor[T any](codec Codec, module *Module) (*Processor[T], error) {
	if module == nil {
		module = DefaultModule()
	}
	plan, err := planFor[T](module)
	if err != nil {
		return nil, err
	}

	p := &Processor[T]{
		codec:  codec,
		module: module,
		plan:   plan,
	}

	emitProcessorCreated(context.Background(), codec.ContentType(), plan.typeName, len(plan.masked))
	return p, nil
}

// Properties returns the prepared properties of T, including those left alone.
func (p *Processor[T]) Properties() []Property {
	out := make([]Property, len(p.plan.properties))
	copy(out, p.plan.properties)
	return out
}

// Module returns the module the processor resolves policies with.
func (p *Processor[T]) Module() *Module {
	return p.module
}

// planFor returns the cached plan for T or builds one. Concurrent first use may
// build the plan twice; the first one stored is kept.
func planFor[T any](m *Module) (*typePlan, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, typ)
	}
	if cached, ok := m.plans.Load(typ); ok {
		return cached.(*typePlan), nil
	}
	return m.storePlan(typ, sentinel.Scan[T](), make(map[reflect.Type]bool))
}

// elementPlan builds and caches the plan of a struct type reached through a
// container or a wrapped subject. Types already being built are skipped; their
// plan is stored once the outer build completes.
func (m *Module) elementPlan(typ reflect.Type, building map[reflect.Type]bool) error {
	if building[typ] {
		return nil
	}
	if _, ok := m.plans.Load(typ); ok {
		return nil
	}
	spec := scanNestedType(typ, nil)
	if spec == nil {
		return nil
	}
	_, err := m.storePlan(typ, *spec, building)
	return err
}

// storePlan builds the plan of typ and caches it on the module.
func (m *Module) storePlan(typ reflect.Type, spec sentinel.Metadata, building map[reflect.Type]bool) (*typePlan, error) {
	building[typ] = true
	defer delete(building, typ)

	plan, err := m.buildPlan(typ, spec, building)
	if err != nil {
		return nil, err
	}
	actual, _ := m.plans.LoadOrStore(typ, plan)
	return actual.(*typePlan), nil
}

// buildPlan resolves every property of spec and the plans of the structs its
// fields hold.
func (m *Module) buildPlan(typ reflect.Type, spec sentinel.Metadata, building map[reflect.Type]bool) (*typePlan, error) {
	b := &planBuilder{visiting: map[reflect.Type]bool{typ: true}}
	b.collect(spec, nil, nil, "")

	prepared, err := m.Prepare(b.props)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", spec.TypeName, err)
	}

	plan := &typePlan{
		typeName:   spec.TypeName,
		properties: prepared,
	}
	for _, prop := range prepared {
		if prop.Decoder != nil {
			plan.masked = append(plan.masked, prop)
		}
	}

	for _, n := range b.nested {
		if err := m.elementPlan(n.elem, building); err != nil {
			return nil, fmt.Errorf("prepare %s: field %s: %w", spec.TypeName, n.path, err)
		}
		if !building[n.elem] {
			if cached, ok := m.plans.Load(n.elem); !ok || cached.(*typePlan).empty() {
				continue
			}
		}
		plan.nested = append(plan.nested, n)
	}
	return plan, nil
}

// planBuilder turns the fields of one struct type into properties.
type planBuilder struct {
	props    []Property
	nested   []nestedField
	visiting map[reflect.Type]bool
}

// collect recursively turns fields into properties. Wrapped fields are leaves;
// other struct fields are descended into. Fields holding structs inside
// containers or wrapped subjects are also recorded as nested fields.
func (b *planBuilder) collect(spec sentinel.Metadata, parentIndex, ptrIndices []int, namePrefix string) {
	for _, field := range spec.Fields {
		fullIndex := append(append([]int{}, parentIndex...), field.Index...)
		fullName := field.Name
		if namePrefix != "" {
			fullName = namePrefix + "." + field.Name
		}

		shape, subject := ShapeOf(field.ReflectType)
		if shape != ShapeNone {
			fieldPtrs := ptrIndices
			if field.ReflectType.Kind() == reflect.Pointer {
				fieldPtrs = append(append([]int{}, ptrIndices...), len(fullIndex)-1)
			}
			b.props = append(b.props, Property{
				Name:     field.Name,
				Path:     fullName,
				Type:     field.ReflectType,
				Shape:    shape,
				Subject:  subject,
				Tags:     maskingTags(field),
				Index:    fullIndex,
				Pointers: fieldPtrs,
			})
			b.nest(elementStruct(subject), fullName, fullIndex, ptrIndices)
			continue
		}

		// Handle nested structs
		if field.Kind == sentinel.KindStruct {
			if nestedSpec := scanNestedType(field.ReflectType, b.visiting); nestedSpec != nil {
				b.visiting[field.ReflectType] = true
				b.collect(*nestedSpec, fullIndex, ptrIndices, fullName)
				delete(b.visiting, field.ReflectType)
			}
			continue
		}

		// Handle pointer to struct
		if field.Kind == sentinel.KindPointer && field.ReflectType.Elem().Kind() == reflect.Struct {
			elem := field.ReflectType.Elem()
			if nestedSpec := scanNestedType(elem, b.visiting); nestedSpec != nil {
				newPtrIndices := append(append([]int{}, ptrIndices...), len(fullIndex)-1)
				b.visiting[elem] = true
				b.collect(*nestedSpec, fullIndex, newPtrIndices, fullName)
				delete(b.visiting, elem)
			}
			continue
		}

		b.props = append(b.props, Property{
			Name:     field.Name,
			Path:     fullName,
			Type:     field.ReflectType,
			Index:    fullIndex,
			Pointers: ptrIndices,
		})
		b.nest(elementStruct(field.ReflectType), fullName, fullIndex, ptrIndices)
	}
}

func (b *planBuilder) nest(elem reflect.Type, path string, index, pointers []int) {
	if elem == nil {
		return
	}
	b.nested = append(b.nested, nestedField{
		path:     path,
		index:    index,
		pointers: pointers,
		elem:     elem,
	})
}

// elementStruct returns the struct type reached from t through pointers,
// slice and array elements, map values and wrapped subjects, or nil. A plain
// struct is returned only when reached through one of those.
func elementStruct(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		case reflect.Struct:
			shape, subject := ShapeOf(t)
			if shape == ShapeNone {
				return t
			}
			t = subject
		default:
			return nil
		}
	}
	return nil
}

// maskingTags returns the obfuscate and represent tags of a field. sentinel
// reports registered tags; nested types scanned here carry them directly.
func maskingTags(field sentinel.FieldMetadata) map[string]string {
	tags := make(map[string]string)
	for _, key := range []string{TagObfuscate, TagRepresent} {
		if val, ok := field.Tags[key]; ok {
			tags[key] = val
		}
	}
	return tags
}

// scanNestedType scans a nested struct type and returns its metadata.
// Types already on the current path are skipped.
func scanNestedType(rt reflect.Type, visiting map[reflect.Type]bool) *sentinel.Metadata {
	if rt.Kind() != reflect.Struct || visiting[rt] {
		return nil
	}

	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return &spec
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseMaskingTags(sf.Tag),
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		spec.Fields = append(spec.Fields, fm)
	}

	return &spec
}

// parseMaskingTags extracts the obfuscate and represent tags from a struct tag.
func parseMaskingTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range []string{TagObfuscate, TagRepresent} {
		if val, ok := tag.Lookup(key); ok {
			tags[key] = val
		}
	}
	return tags
}

// Decode unmarshals data and applies the wrapping decoder of every masked field.
// Codec errors are returned as a CodecError wrapping the codec's own error.
func (p *Processor[T]) Decode(ctx context.Context, data []byte) (*T, error) {
	start := time.Now()
	emitDecodeStart(ctx, p.codec.ContentType(), p.plan.typeName)

	var retErr error
	defer func() {
		emitDecodeComplete(ctx, p.codec.ContentType(), p.plan.typeName,
			len(data), time.Since(start), len(p.plan.masked), retErr)
	}()

	var obj T
	if err := p.codec.Unmarshal(data, &obj); err != nil {
		p.plan.locate(err)
		retErr = newCodecError(ErrUnmarshal, err)
		return nil, retErr
	}

	if err := p.Apply(&obj); err != nil {
		retErr = err
		return nil, retErr
	}

	return &obj, nil
}

// locate fills in the field path of a DecodeError raised by a wrapped type's
// codec hook. The path is known when exactly one property of the type has the
// error's shape and subject type; otherwise it stays empty.
func (p *typePlan) locate(err error) {
	var de *DecodeError
	if !errors.As(err, &de) || de.Path != "" {
		return
	}
	var path string
	for _, prop := range p.properties {
		if prop.Shape != de.Shape || prop.Subject != de.Subject {
			continue
		}
		if path != "" {
			return
		}
		path = prop.Path
	}
	de.Path = path
}

// Apply runs the wrapping decoders on an already decoded value. Fields behind
// a nil pointer are skipped. Structs held in slices, arrays, maps and wrapped
// subjects are masked with their own plan before the field holding them.
func (p *Processor[T]) Apply(obj *T) error {
	if obj == nil {
		return nil
	}
	return p.module.apply(p.plan, reflect.ValueOf(obj).Elem())
}

// apply runs plan on rv, an addressable value of the plan's struct type.
func (m *Module) apply(plan *typePlan, rv reflect.Value) error {
	for _, n := range plan.nested {
		field, ok := getField(rv, n.index, n.pointers)
		if !ok {
			continue
		}
		if err := m.applyWithin(field, n.elem); err != nil {
			return err
		}
	}

	for _, prop := range plan.masked {
		field, ok := getField(rv, prop.Index, prop.Pointers)
		if !ok {
			continue
		}
		if err := prop.Decoder.Decode(field); err != nil {
			return err
		}
	}
	return nil
}

// applyWithin applies the plan of struct type elem to every elem value reached
// from v. Map values are not addressable, so each is copied, masked and stored
// back.
func (m *Module) applyWithin(v reflect.Value, elem reflect.Type) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return m.applyWithin(v.Elem(), elem)

	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := m.applyWithin(v.Index(i), elem); err != nil {
				return err
			}
		}

	case reflect.Map:
		for _, key := range v.MapKeys() {
			val := reflect.New(v.Type().Elem()).Elem()
			val.Set(v.MapIndex(key))
			if err := m.applyWithin(val, elem); err != nil {
				return err
			}
			v.SetMapIndex(key, val)
		}

	case reflect.Struct:
		if !v.CanAddr() {
			return nil
		}
		if v.Type() == elem {
			cached, ok := m.plans.Load(elem)
			if !ok {
				return nil
			}
			return m.apply(cached.(*typePlan), v)
		}
		if h, ok := v.Addr().Interface().(subjectHolder); ok {
			return m.applyWithin(h.subjectValue(), elem)
		}
	}
	return nil
}

// Encode marshals obj. Wrapped fields always encode their unmasked value.
func (p *Processor[T]) Encode(ctx context.Context, obj *T) ([]byte, error) {
	start := time.Now()
	emitEncodeStart(ctx, p.codec.ContentType(), p.plan.typeName)

	var retErr error
	var retData []byte
	defer func() {
		emitEncodeComplete(ctx, p.codec.ContentType(), p.plan.typeName,
			len(retData), time.Since(start), retErr)
	}()

	var v any = obj
	if obj == nil {
		v = nil
	}

	data, err := p.codec.Marshal(v)
	if err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return nil, retErr
	}
	retData = data
	return retData, nil
}

// getField navigates a field path, dereferencing pointers as needed.
// A pointer in the last position is returned as is.
func getField(rv reflect.Value, index, pointers []int) (reflect.Value, bool) {
	if len(pointers) == 0 {
		return rv.FieldByIndex(index), true
	}

	current := rv
	ptrSet := make(map[int]bool, len(pointers))
	for _, idx := range pointers {
		ptrSet[idx] = true
	}

	last := len(index) - 1
	for i, idx := range index {
		current = current.Field(idx)

		if ptrSet[i] && i != last {
			if current.IsNil() {
				return reflect.Value{}, false
			}
			current = current.Elem()
		}
	}

	return current, true
}
