package classgraph

import (
	"fmt"
	"sort"
	"strings"

	"apicheck/internal/classfile"
	apierrors "apicheck/internal/errors"
)

// Registry owns every Class of one distribution. It is built by loading
// class facts, then resolved once. It is not safe for concurrent use.
type Registry struct {
	policy     NamingPolicy
	classes    map[string]*Class
	visible    map[string]*Class
	duplicates []string
	resolved   bool
}

// NewRegistry creates an empty registry governed by policy.
func NewRegistry(policy NamingPolicy) *Registry {
	return &Registry{
		policy:  policy,
		classes: make(map[string]*Class),
		visible: make(map[string]*Class),
	}
}

// Policy returns the naming policy the registry was created with.
func (r *Registry) Policy() NamingPolicy { return r.policy }

// Get returns the class called name, creating an unresolved stub on first
// reference.
func (r *Registry) Get(name string) *Class {
	if c, ok := r.classes[name]; ok {
		return c
	}
	c := newClass(name)
	r.classes[name] = c
	return c
}

// Lookup returns a class without creating it.
func (r *Registry) Lookup(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Len returns the number of classes known to the registry, stubs included.
func (r *Registry) Len() int { return len(r.classes) }

// Classes returns every known class sorted by name.
func (r *Registry) Classes() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c)
	}
	sortClasses(out)
	return out
}

// Duplicates lists class names whose facts were loaded more than once.
func (r *Registry) Duplicates() []string {
	return append([]string(nil), r.duplicates...)
}

// Load applies the facts of one class file. A class loaded twice keeps the
// later access flags and superclass and the union of interfaces and members.
func (r *Registry) Load(facts *classfile.ClassFacts) error {
	if r.resolved {
		return ErrResolved
	}
	if facts == nil || facts.Name == "" {
		return apierrors.Newf(apierrors.InvalidInput, "class facts without a name")
	}

	c := r.Get(facts.Name)
	if c.loaded {
		r.duplicates = append(r.duplicates, facts.Name)
	}
	if err := c.SetAccess(facts.Access); err != nil {
		return err
	}

	var super *Class
	if facts.SuperName != "" {
		super = r.Get(facts.SuperName)
	}
	if err := c.SetSuperclass(super); err != nil {
		return err
	}
	for _, name := range facts.Interfaces {
		if err := c.AddInterface(r.Get(name)); err != nil {
			return err
		}
	}
	for _, m := range facts.Methods {
		if err := c.AddDeclaredMethod(NewMethod(m.Access, m.Name, m.Descriptor)); err != nil {
			return err
		}
	}
	for _, f := range facts.Fields {
		if err := c.AddDeclaredField(NewField(f.Access, f.Name, f.Descriptor)); err != nil {
			return err
		}
	}
	return nil
}

// ResolveAll resolves inheritance for every known class and rebuilds the
// visible API. Ancestors are resolved before descendants and each class is
// processed once. A supertype cycle is reported as an INHERITANCE_CYCLE error.
func (r *Registry) ResolveAll() error {
	r.visible = make(map[string]*Class)
	for _, c := range r.Classes() {
		if err := r.resolve(c, nil); err != nil {
			return err
		}
		if r.policy.Allows(c.name) && c.IsPublic() {
			r.visible[c.name] = c
		}
	}
	r.resolved = true
	return nil
}

func (r *Registry) resolve(c *Class, path []string) error {
	switch c.state {
	case resolved:
		return nil
	case resolving:
		cycle := append(path, c.name)
		return apierrors.New(apierrors.InheritanceCycle,
			fmt.Sprintf("supertype cycle: %s", strings.Join(cycle, " -> ")), nil).
			WithDetails(map[string]interface{}{"cycle": cycle})
	}

	c.state = resolving
	path = append(path, c.name)

	if c.superclass != nil {
		if err := r.resolve(c.superclass, path); err != nil {
			return err
		}
		c.inherit(c.superclass)
	}
	for _, iface := range c.Interfaces() {
		if err := r.resolve(iface, path); err != nil {
			return err
		}
		c.inherit(iface)
	}

	c.state = resolved
	return nil
}

// Resolved reports whether ResolveAll has completed.
func (r *Registry) Resolved() bool { return r.resolved }

// VisibleAPI returns the classes that pass the naming policy and are public,
// sorted by name. Empty until ResolveAll has run.
func (r *Registry) VisibleAPI() []*Class {
	out := make([]*Class, 0, len(r.visible))
	for _, c := range r.visible {
		out = append(out, c)
	}
	sortClasses(out)
	return out
}

// LookupVisible returns a visible-API class by name.
func (r *Registry) LookupVisible(name string) (*Class, bool) {
	c, ok := r.visible[name]
	return c, ok
}

// VisibleNames returns the sorted names of the visible API.
func (r *Registry) VisibleNames() []string {
	names := make([]string, 0, len(r.visible))
	for name := range r.visible {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
