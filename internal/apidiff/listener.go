// Package apidiff compares the visible API of two resolved class registries
// and reports the differences as an ordered stream of callbacks.
package apidiff

import "apicheck/internal/classgraph"

// Listener receives diff events. Every slot is optional; a nil slot ignores
// its event. For per-class events, before and after are the instances from
// the respective registries.
type Listener struct {
	ClassAdded        func(after *classgraph.Class)
	ClassRemoved      func(before *classgraph.Class)
	ClassUnchanged    func(after *classgraph.Class)
	ClassChanged      func(before, after *classgraph.Class)
	SuperclassChanged func(before, after *classgraph.Class)
	InterfaceAdded    func(before, after, iface *classgraph.Class)
	InterfaceRemoved  func(before, after, iface *classgraph.Class)
	MethodAdded       func(before, after *classgraph.Class, m classgraph.Method)
	MethodRemoved     func(before, after *classgraph.Class, m classgraph.Method)
	FieldAdded        func(before, after *classgraph.Class, f classgraph.Field)
	FieldRemoved      func(before, after *classgraph.Class, f classgraph.Field)
}

// Tee returns a Listener that forwards every event to each listener in order.
func Tee(listeners ...Listener) Listener {
	return Listener{
		ClassAdded: func(c *classgraph.Class) {
			for _, l := range listeners {
				l.classAdded(c)
			}
		},
		ClassRemoved: func(c *classgraph.Class) {
			for _, l := range listeners {
				l.classRemoved(c)
			}
		},
		ClassUnchanged: func(c *classgraph.Class) {
			for _, l := range listeners {
				l.classUnchanged(c)
			}
		},
		ClassChanged: func(b, a *classgraph.Class) {
			for _, l := range listeners {
				l.classChanged(b, a)
			}
		},
		SuperclassChanged: func(b, a *classgraph.Class) {
			for _, l := range listeners {
				l.superclassChanged(b, a)
			}
		},
		InterfaceAdded: func(b, a, i *classgraph.Class) {
			for _, l := range listeners {
				l.interfaceAdded(b, a, i)
			}
		},
		InterfaceRemoved: func(b, a, i *classgraph.Class) {
			for _, l := range listeners {
				l.interfaceRemoved(b, a, i)
			}
		},
		MethodAdded: func(b, a *classgraph.Class, m classgraph.Method) {
			for _, l := range listeners {
				l.methodAdded(b, a, m)
			}
		},
		MethodRemoved: func(b, a *classgraph.Class, m classgraph.Method) {
			for _, l := range listeners {
				l.methodRemoved(b, a, m)
			}
		},
		FieldAdded: func(b, a *classgraph.Class, f classgraph.Field) {
			for _, l := range listeners {
				l.fieldAdded(b, a, f)
			}
		},
		FieldRemoved: func(b, a *classgraph.Class, f classgraph.Field) {
			for _, l := range listeners {
				l.fieldRemoved(b, a, f)
			}
		},
	}
}

func (l Listener) classAdded(c *classgraph.Class) {
	if l.ClassAdded != nil {
		l.ClassAdded(c)
	}
}

func (l Listener) classRemoved(c *classgraph.Class) {
	if l.ClassRemoved != nil {
		l.ClassRemoved(c)
	}
}

func (l Listener) classUnchanged(c *classgraph.Class) {
	if l.ClassUnchanged != nil {
		l.ClassUnchanged(c)
	}
}

func (l Listener) classChanged(b, a *classgraph.Class) {
	if l.ClassChanged != nil {
		l.ClassChanged(b, a)
	}
}

func (l Listener) superclassChanged(b, a *classgraph.Class) {
	if l.SuperclassChanged != nil {
		l.SuperclassChanged(b, a)
	}
}

func (l Listener) interfaceAdded(b, a, i *classgraph.Class) {
	if l.InterfaceAdded != nil {
		l.InterfaceAdded(b, a, i)
	}
}

func (l Listener) interfaceRemoved(b, a, i *classgraph.Class) {
	if l.InterfaceRemoved != nil {
		l.InterfaceRemoved(b, a, i)
	}
}

func (l Listener) methodAdded(b, a *classgraph.Class, m classgraph.Method) {
	if l.MethodAdded != nil {
		l.MethodAdded(b, a, m)
	}
}

func (l Listener) methodRemoved(b, a *classgraph.Class, m classgraph.Method) {
	if l.MethodRemoved != nil {
		l.MethodRemoved(b, a, m)
	}
}

func (l Listener) fieldAdded(b, a *classgraph.Class, f classgraph.Field) {
	if l.FieldAdded != nil {
		l.FieldAdded(b, a, f)
	}
}

func (l Listener) fieldRemoved(b, a *classgraph.Class, f classgraph.Field) {
	if l.FieldRemoved != nil {
		l.FieldRemoved(b, a, f)
	}
}
