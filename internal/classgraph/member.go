package classgraph

import "sort"

// Member is a method or field identified by name and type descriptor. The
// descriptor is compared as an opaque string.
type Member struct {
	name       string
	descriptor string
	access     uint16
}

func (m Member) Name() string       { return m.name }
func (m Member) Descriptor() string { return m.descriptor }
func (m Member) Access() uint16     { return m.access }

// Signature is name immediately followed by descriptor, e.g. "foo()V".
func (m Member) Signature() string {
	return m.name + m.descriptor
}

func (m Member) Visibility() Visibility {
	return VisibilityFromAccess(m.access)
}

// Equal compares identity only; access flags are not part of it.
func (m Member) Equal(other Member) bool {
	return m.name == other.name && m.descriptor == other.descriptor
}

func (m Member) String() string {
	return m.Signature()
}

// Method is a declared or inherited method.
type Method struct {
	Member
}

// NewMethod creates a method from raw facts.
func NewMethod(access uint16, name, descriptor string) Method {
	return Method{Member{name: name, descriptor: descriptor, access: access}}
}

// IsVisibleAPI reports whether the method is reachable by API consumers.
// Protected counts because subclasses can call and override it.
func (m Method) IsVisibleAPI() bool {
	v := m.Visibility()
	return v == Public || v == Protected
}

// Field is a declared or inherited field.
type Field struct {
	Member
}

// NewField creates a field from raw facts.
func NewField(access uint16, name, descriptor string) Field {
	return Field{Member{name: name, descriptor: descriptor, access: access}}
}

// IsVisibleAPI reports whether the field is public.
func (f Field) IsVisibleAPI() bool {
	return f.Visibility() == Public
}

func sortedMethods(in map[string]Method, keep func(Method) bool) []Method {
	out := make([]Method, 0, len(in))
	for _, m := range in {
		if keep == nil || keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature() < out[j].Signature() })
	return out
}

func sortedFields(in map[string]Field, keep func(Field) bool) []Field {
	out := make([]Field, 0, len(in))
	for _, f := range in {
		if keep == nil || keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature() < out[j].Signature() })
	return out
}
