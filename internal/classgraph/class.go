package classgraph

import (
	"errors"
	"sort"
	"strings"
)

// ErrResolved is returned when facts are added to a class or registry after
// resolution has completed.
var ErrResolved = errors.New("class graph already resolved")

type resolveState uint8

const (
	unresolved resolveState = iota
	resolving
	resolved
)

// Class is one class or interface in a registry. Instances are created only
// by Registry.Get, so each name maps to exactly one *Class per registry.
type Class struct {
	name       string
	access     uint16
	loaded     bool
	superclass *Class
	interfaces map[*Class]struct{}

	declaredMethods map[string]Method
	declaredFields  map[string]Field

	// declared plus inherited, filled during resolution
	methods map[string]Method
	fields  map[string]Field

	state resolveState
}

func newClass(name string) *Class {
	return &Class{
		name:            name,
		interfaces:      make(map[*Class]struct{}),
		declaredMethods: make(map[string]Method),
		declaredFields:  make(map[string]Field),
		methods:         make(map[string]Method),
		fields:          make(map[string]Field),
	}
}

// Name is the slash-separated binary name, e.g. "org/example/Widget".
func (c *Class) Name() string { return c.name }

// String renders the dotted name.
func (c *Class) String() string {
	return strings.ReplaceAll(c.name, "/", ".")
}

func (c *Class) Access() uint16 { return c.access }

func (c *Class) Visibility() Visibility {
	return VisibilityFromAccess(c.access)
}

// IsPublic reports whether the class itself is public.
func (c *Class) IsPublic() bool {
	return c.Visibility() == Public
}

// Loaded reports whether facts from a class file were applied. Classes that
// were only referenced as a supertype stay unloaded stubs.
func (c *Class) Loaded() bool { return c.loaded }

func (c *Class) Resolved() bool { return c.state == resolved }

// Superclass returns nil for a root class.
func (c *Class) Superclass() *Class { return c.superclass }

// SuperclassName returns "" for a root class.
func (c *Class) SuperclassName() string {
	if c.superclass == nil {
		return ""
	}
	return c.superclass.name
}

// Interfaces returns the directly implemented interfaces sorted by name.
func (c *Class) Interfaces() []*Class {
	out := make([]*Class, 0, len(c.interfaces))
	for iface := range c.interfaces {
		out = append(out, iface)
	}
	sortClasses(out)
	return out
}

// DeclaredMethods returns methods from this class's own facts.
func (c *Class) DeclaredMethods() []Method { return sortedMethods(c.declaredMethods, nil) }

// DeclaredFields returns fields from this class's own facts.
func (c *Class) DeclaredFields() []Field { return sortedFields(c.declaredFields, nil) }

// Methods returns declared and inherited methods.
func (c *Class) Methods() []Method { return sortedMethods(c.methods, nil) }

// Fields returns declared and inherited fields.
func (c *Class) Fields() []Field { return sortedFields(c.fields, nil) }

// VisibleMethods returns the public and protected methods, declared or
// inherited, sorted by signature.
func (c *Class) VisibleMethods() []Method {
	return sortedMethods(c.methods, Method.IsVisibleAPI)
}

// VisibleFields returns the public fields, declared or inherited, sorted by
// signature.
func (c *Class) VisibleFields() []Field {
	return sortedFields(c.fields, Field.IsVisibleAPI)
}

// Method looks up an effective method by signature.
func (c *Class) Method(signature string) (Method, bool) {
	m, ok := c.methods[signature]
	return m, ok
}

// Field looks up an effective field by signature.
func (c *Class) Field(signature string) (Field, bool) {
	f, ok := c.fields[signature]
	return f, ok
}

// SetAccess records the class's own access flags.
func (c *Class) SetAccess(access uint16) error {
	if c.state != unresolved {
		return ErrResolved
	}
	c.access = access
	c.loaded = true
	return nil
}

// SetSuperclass records the direct superclass; nil marks a root.
func (c *Class) SetSuperclass(super *Class) error {
	if c.state != unresolved {
		return ErrResolved
	}
	c.superclass = super
	return nil
}

// AddInterface records a directly implemented interface. Adding the same
// instance twice is a no-op.
func (c *Class) AddInterface(iface *Class) error {
	if c.state != unresolved {
		return ErrResolved
	}
	c.interfaces[iface] = struct{}{}
	return nil
}

// AddDeclaredMethod records a method from this class's own facts.
func (c *Class) AddDeclaredMethod(m Method) error {
	if c.state != unresolved {
		return ErrResolved
	}
	c.declaredMethods[m.Signature()] = m
	c.methods[m.Signature()] = m
	return nil
}

// AddDeclaredField records a field from this class's own facts.
func (c *Class) AddDeclaredField(f Field) error {
	if c.state != unresolved {
		return ErrResolved
	}
	c.declaredFields[f.Signature()] = f
	c.fields[f.Signature()] = f
	return nil
}

// inherit merges the effective members of an ancestor. Declared members are
// already present, so they shadow inherited ones. Between ancestors the first
// to supply a signature keeps it: the superclass, then interfaces by name.
func (c *Class) inherit(from *Class) {
	for sig, m := range from.methods {
		if _, ok := c.methods[sig]; ok {
			continue
		}
		c.methods[sig] = m
	}
	for sig, f := range from.fields {
		if _, ok := c.fields[sig]; ok {
			continue
		}
		c.fields[sig] = f
	}
}

func sortClasses(classes []*Class) {
	sort.Slice(classes, func(i, j int) bool { return classes[i].name < classes[j].name })
}
