package apidiff

import "apicheck/internal/classgraph"

// EventKind names one Listener slot.
type EventKind string

const (
	EventClassAdded        EventKind = "class_added"
	EventClassRemoved      EventKind = "class_removed"
	EventClassUnchanged    EventKind = "class_unchanged"
	EventClassChanged      EventKind = "class_changed"
	EventSuperclassChanged EventKind = "superclass_changed"
	EventInterfaceAdded    EventKind = "interface_added"
	EventInterfaceRemoved  EventKind = "interface_removed"
	EventMethodAdded       EventKind = "method_added"
	EventMethodRemoved     EventKind = "method_removed"
	EventFieldAdded        EventKind = "field_added"
	EventFieldRemoved      EventKind = "field_removed"
)

// Event is a recorded callback. Class is the binary name of the class the
// event is about. Subject is the interface name or member signature for
// detail events; OldValue and NewValue carry superclass names.
type Event struct {
	Kind     EventKind
	Class    string
	Subject  string
	OldValue string
	NewValue string

	Before *classgraph.Class
	After  *classgraph.Class
}

// Recorder keeps every event in arrival order and counts them per kind, so
// callers get the aggregate ClassChanged signal and per-dimension totals
// from one run.
type Recorder struct {
	Events []Event
	counts map[EventKind]int
}

func NewRecorder() *Recorder {
	return &Recorder{counts: make(map[EventKind]int)}
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	return r.counts[kind]
}

// Counts returns a copy of the per-kind totals.
func (r *Recorder) Counts() map[EventKind]int {
	out := make(map[EventKind]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Filter returns the recorded events of the given kinds, in order.
func (r *Recorder) Filter(kinds ...EventKind) []Event {
	want := make(map[EventKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []Event
	for _, e := range r.Events {
		if want[e.Kind] {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) add(e Event) {
	r.Events = append(r.Events, e)
	r.counts[e.Kind]++
}

// Listener returns a Listener that records into r.
func (r *Recorder) Listener() Listener {
	return Listener{
		ClassAdded: func(a *classgraph.Class) {
			r.add(Event{Kind: EventClassAdded, Class: a.Name(), After: a})
		},
		ClassRemoved: func(b *classgraph.Class) {
			r.add(Event{Kind: EventClassRemoved, Class: b.Name(), Before: b})
		},
		ClassUnchanged: func(a *classgraph.Class) {
			r.add(Event{Kind: EventClassUnchanged, Class: a.Name(), After: a})
		},
		ClassChanged: func(b, a *classgraph.Class) {
			r.add(Event{Kind: EventClassChanged, Class: a.Name(), Before: b, After: a})
		},
		SuperclassChanged: func(b, a *classgraph.Class) {
			r.add(Event{
				Kind: EventSuperclassChanged, Class: a.Name(), Before: b, After: a,
				OldValue: b.SuperclassName(), NewValue: a.SuperclassName(),
			})
		},
		InterfaceAdded: func(b, a, i *classgraph.Class) {
			r.add(Event{Kind: EventInterfaceAdded, Class: a.Name(), Subject: i.Name(), Before: b, After: a})
		},
		InterfaceRemoved: func(b, a, i *classgraph.Class) {
			r.add(Event{Kind: EventInterfaceRemoved, Class: a.Name(), Subject: i.Name(), Before: b, After: a})
		},
		MethodAdded: func(b, a *classgraph.Class, m classgraph.Method) {
			r.add(Event{Kind: EventMethodAdded, Class: a.Name(), Subject: m.Signature(), Before: b, After: a})
		},
		MethodRemoved: func(b, a *classgraph.Class, m classgraph.Method) {
			r.add(Event{Kind: EventMethodRemoved, Class: a.Name(), Subject: m.Signature(), Before: b, After: a})
		},
		FieldAdded: func(b, a *classgraph.Class, f classgraph.Field) {
			r.add(Event{Kind: EventFieldAdded, Class: a.Name(), Subject: f.Signature(), Before: b, After: a})
		},
		FieldRemoved: func(b, a *classgraph.Class, f classgraph.Field) {
			r.add(Event{Kind: EventFieldRemoved, Class: a.Name(), Subject: f.Signature(), Before: b, After: a})
		},
	}
}
