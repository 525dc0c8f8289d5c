package shroud

import (
	"context"
	"reflect"
	"sync"
)

// Module holds the masking configuration shared by processors: the global
// default obfuscator, type-specific defaults and the object factory used for
// tag-referenced obfuscators and representations.
//
// A Module is immutable once NewModule returns and is safe for concurrent use.
type Module struct {
	factory           ObjectFactory
	defaultObfuscator Obfuscator
	obfuscators       typeRegistry[Obfuscator]
	representations   typeRegistry[Representation]
	graph             *TypeGraph
	requireTag        bool

	// Per-type property plans, built on first use.
	plans sync.Map // reflect.Type -> *typePlan
}

// Option configures a Module.
type Option func(*moduleConfig)

type moduleConfig struct {
	factory           ObjectFactory
	defaultObfuscator Obfuscator
	obfuscators       typeRegistry[Obfuscator]
	representations   typeRegistry[Representation]
	graph             *TypeGraph
	requireTag        bool

	obfuscatorCtors     map[string]ObfuscatorConstructor
	representationCtors map[string]RepresentationConstructor

	err error
}

func (c *moduleConfig) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// DefaultObfuscatorLength is the length of the default FixedLength obfuscator.
const DefaultObfuscatorLength = 3

var defaultModule = sync.OnceValue(func() *Module {
	m, err := NewModule()
	if err != nil {
		panic(err)
	}
	return m
})

// DefaultModule returns a shared module with all settings at their defaults.
func DefaultModule() *Module {
	return defaultModule()
}

// NewModule creates a Module. Invalid options are reported here, never at
// decode time.
func NewModule(opts ...Option) (*Module, error) {
	cfg := &moduleConfig{
		defaultObfuscator:   FixedLength(DefaultObfuscatorLength),
		obfuscators:         newTypeRegistry[Obfuscator](),
		representations:     newTypeRegistry[Representation](),
		graph:               newTypeGraph(),
		obfuscatorCtors:     make(map[string]ObfuscatorConstructor),
		representationCtors: make(map[string]RepresentationConstructor),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	factory := cfg.factory
	if factory == nil {
		factory = NewConstructorFactory(cfg.obfuscatorCtors, cfg.representationCtors)
	} else if len(cfg.obfuscatorCtors) > 0 || len(cfg.representationCtors) > 0 {
		return nil, newConfigError(ErrConflictingFactory, "WithObjectFactory", nil)
	}

	m := &Module{
		factory:           factory,
		defaultObfuscator: cfg.defaultObfuscator,
		obfuscators:       cfg.obfuscators,
		representations:   cfg.representations,
		graph:             cfg.graph,
		requireTag:        cfg.requireTag,
	}

	emitModuleCreated(context.Background(),
		len(m.obfuscators.classes)+len(m.obfuscators.interfaces),
		len(m.representations.classes)+len(m.representations.interfaces))
	return m, nil
}

// WithDefaultObfuscator sets the obfuscator used for single values when neither
// a tag nor a type-specific default applies. The default is FixedLength(3).
func WithDefaultObfuscator(o Obfuscator) Option {
	return func(c *moduleConfig) {
		if o == nil {
			c.fail(newConfigError(ErrNilObfuscator, "WithDefaultObfuscator", nil))
			return
		}
		c.defaultObfuscator = o
	}
}

// WithTypeObfuscator sets the default obfuscator for subject type t, its
// embedding types and, for interfaces, its implementations.
func WithTypeObfuscator(t reflect.Type, o Obfuscator) Option {
	return func(c *moduleConfig) {
		switch {
		case t == nil:
			c.fail(newConfigError(ErrNilType, "WithTypeObfuscator", nil))
		case o == nil:
			c.fail(newConfigError(ErrNilObfuscator, "WithTypeObfuscator", t))
		default:
			c.obfuscators.put(t, o)
			c.graph.know(t)
		}
	}
}

// ObfuscatorFor is WithTypeObfuscator for type parameter T.
// T may be an interface type.
func ObfuscatorFor[T any](o Obfuscator) Option {
	return WithTypeObfuscator(reflect.TypeFor[T](), o)
}

// WithTypeRepresentation sets the default representation for subject type t,
// its embedding types and, for interfaces, its implementations.
func WithTypeRepresentation(t reflect.Type, r Representation) Option {
	return func(c *moduleConfig) {
		switch {
		case t == nil:
			c.fail(newConfigError(ErrNilType, "WithTypeRepresentation", nil))
		case r == nil:
			c.fail(newConfigError(ErrNilRepresentation, "WithTypeRepresentation", t))
		default:
			c.representations.put(t, r)
			c.graph.know(t)
		}
	}
}

// RepresentationFor is WithTypeRepresentation for type parameter T.
func RepresentationFor[T any](r Representation) Option {
	return WithTypeRepresentation(reflect.TypeFor[T](), r)
}

// RequireObfuscatorTag controls whether List, Set, Collection and Map fields
// need an obfuscate tag to be masked. When false (the default), a type-specific
// default for the element or value type is enough.
func RequireObfuscatorTag(require bool) Option {
	return func(c *moduleConfig) {
		c.requireTag = require
	}
}

// WithObjectFactory replaces the factory that constructs tag-referenced
// obfuscators and representations. It cannot be combined with
// WithObfuscatorConstructor or WithRepresentationConstructor.
func WithObjectFactory(f ObjectFactory) Option {
	return func(c *moduleConfig) {
		if f == nil {
			c.fail(newConfigError(ErrNilConstructor, "WithObjectFactory", nil))
			return
		}
		c.factory = f
	}
}

// WithObfuscatorConstructor registers a constructor for obfuscate tags naming
// name. It replaces a built-in constructor of the same name.
func WithObfuscatorConstructor(name string, ctor ObfuscatorConstructor) Option {
	return func(c *moduleConfig) {
		if ctor == nil {
			c.fail(newConfigError(ErrNilConstructor, "WithObfuscatorConstructor", nil))
			return
		}
		c.obfuscatorCtors[name] = ctor
	}
}

// WithRepresentationConstructor registers a constructor for represent tags
// naming name.
func WithRepresentationConstructor(name string, ctor RepresentationConstructor) Option {
	return func(c *moduleConfig) {
		if ctor == nil {
			c.fail(newConfigError(ErrNilConstructor, "WithRepresentationConstructor", nil))
			return
		}
		c.representationCtors[name] = ctor
	}
}

// WithAncestry declares the supertype and interfaces of t, overriding what is
// derived from embedding and method sets. super may be nil.
func WithAncestry(t, super reflect.Type, interfaces ...reflect.Type) Option {
	return func(c *moduleConfig) {
		if t == nil {
			c.fail(newConfigError(ErrNilType, "WithAncestry", nil))
			return
		}
		for _, iface := range interfaces {
			if iface == nil || iface.Kind() != reflect.Interface {
				c.fail(newConfigError(ErrNilType, "WithAncestry", iface))
				return
			}
		}
		c.graph.declare(t, super, interfaces)
	}
}

// Ancestry returns the type graph used for type-specific lookups.
func (m *Module) Ancestry() Ancestry {
	return m.graph
}
