package shroud

import (
	"reflect"
	"slices"
)

// Ancestry supplies the type graph walked by type-specific lookups.
//
// Go has no class inheritance, so the graph is explicit: a type's supertype is
// its first embedded struct unless declared otherwise, and its interfaces are
// the known interfaces it satisfies.
type Ancestry interface {
	// Super returns the direct supertype of t, or nil at the root.
	// Never called for interface types.
	Super(t reflect.Type) reflect.Type

	// Interfaces returns the interfaces directly declared by t, in declaration
	// order. For an interface type these are the interfaces it extends.
	Interfaces(t reflect.Type) []reflect.Type
}

type declaration struct {
	super      reflect.Type
	interfaces []reflect.Type
}

// TypeGraph is the default Ancestry. It is built once by NewModule and is
// read-only afterwards.
type TypeGraph struct {
	declared map[reflect.Type]declaration
	known    []reflect.Type // interface types, in registration order
}

func newTypeGraph() *TypeGraph {
	return &TypeGraph{declared: make(map[reflect.Type]declaration)}
}

// declare records an explicit supertype and interface list for t.
func (g *TypeGraph) declare(t, super reflect.Type, interfaces []reflect.Type) {
	g.declared[t] = declaration{super: super, interfaces: slices.Clone(interfaces)}
	for _, iface := range interfaces {
		g.know(iface)
	}
	if t.Kind() == reflect.Interface {
		g.know(t)
	}
}

// know adds an interface type to the set considered by derived lookups.
func (g *TypeGraph) know(iface reflect.Type) {
	if iface.Kind() == reflect.Interface && !slices.Contains(g.known, iface) {
		g.known = append(g.known, iface)
	}
}

// Super returns the declared supertype of t, or the type of its first embedded
// struct field with pointers stripped.
func (g *TypeGraph) Super(t reflect.Type) reflect.Type {
	if d, ok := g.declared[t]; ok {
		return d.super
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			return ft
		}
	}
	return nil
}

// Interfaces returns the declared interfaces of t. Undeclared types report the
// known interfaces they satisfy that their supertype does not; undeclared
// interface types report the known interfaces they extend.
func (g *TypeGraph) Interfaces(t reflect.Type) []reflect.Type {
	if d, ok := g.declared[t]; ok {
		return d.interfaces
	}

	var result []reflect.Type
	if t.Kind() == reflect.Interface {
		for _, iface := range g.known {
			if iface != t && t.Implements(iface) {
				result = append(result, iface)
			}
		}
		return result
	}

	super := g.Super(t)
	for _, iface := range g.known {
		if implements(t, iface) && (super == nil || !implements(super, iface)) {
			result = append(result, iface)
		}
	}
	return result
}

// implements reports whether t or *t satisfies iface.
func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(iface))
}

// typeRegistry maps types to a capability. Class entries are keyed by
// non-interface types, interface entries by interface types.
type typeRegistry[E any] struct {
	classes    map[reflect.Type]E
	interfaces map[reflect.Type]E
}

func newTypeRegistry[E any]() typeRegistry[E] {
	return typeRegistry[E]{
		classes:    make(map[reflect.Type]E),
		interfaces: make(map[reflect.Type]E),
	}
}

func (r typeRegistry[E]) put(t reflect.Type, e E) {
	if t.Kind() == reflect.Interface {
		r.interfaces[t] = e
		return
	}
	r.classes[t] = e
}

// Lookup finds the entry registered for t or its ancestry.
//
// Search order, first match wins:
//  1. t itself; for non-interface types also its supertypes, nearest first
//  2. the interfaces of t, depth-first through the interfaces they extend
//  3. for non-interface types, step 2 for each supertype in turn
//
// A pointer type registered as is matches exactly; otherwise pointer types are
// looked up by their element type. The interface phases are skipped when
// interfaces is empty.
func Lookup[E any](t reflect.Type, classes, interfaces map[reflect.Type]E, graph Ancestry) (E, bool) {
	var zero E
	if t == nil {
		return zero, false
	}
	for t.Kind() == reflect.Pointer {
		if e, ok := classes[t]; ok {
			return e, true
		}
		t = t.Elem()
	}

	if t.Kind() == reflect.Interface {
		if e, ok := interfaces[t]; ok {
			return e, true
		}
	} else {
		if e, ok := classes[t]; ok {
			return e, true
		}
		for _, c := range supertypes(t, graph) {
			if e, ok := classes[c]; ok {
				return e, true
			}
		}
	}

	if len(interfaces) == 0 {
		return zero, false
	}

	visited := make(map[reflect.Type]bool)
	if e, ok := lookupInterfaces(t, interfaces, graph, visited); ok {
		return e, true
	}

	if t.Kind() == reflect.Interface {
		return zero, false
	}
	for _, c := range supertypes(t, graph) {
		if e, ok := lookupInterfaces(c, interfaces, graph, visited); ok {
			return e, true
		}
	}
	return zero, false
}

// supertypes returns the supertype chain of t, nearest first, stopping at the
// root or at the first repeated type.
func supertypes(t reflect.Type, graph Ancestry) []reflect.Type {
	var chain []reflect.Type
	seen := map[reflect.Type]bool{t: true}
	for c := graph.Super(t); c != nil && !seen[c]; c = graph.Super(c) {
		seen[c] = true
		chain = append(chain, c)
	}
	return chain
}

func lookupInterfaces[E any](t reflect.Type, interfaces map[reflect.Type]E, graph Ancestry, visited map[reflect.Type]bool) (E, bool) {
	for _, iface := range graph.Interfaces(t) {
		if visited[iface] {
			continue
		}
		visited[iface] = true
		if e, ok := interfaces[iface]; ok {
			return e, true
		}
		if e, ok := lookupInterfaces(iface, interfaces, graph, visited); ok {
			return e, true
		}
	}
	var zero E
	return zero, false
}

func (r typeRegistry[E]) lookup(t reflect.Type, graph Ancestry) (E, bool) {
	return Lookup(t, r.classes, r.interfaces, graph)
}
