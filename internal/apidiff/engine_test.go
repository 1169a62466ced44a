package apidiff

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apicheck/internal/classfile"
	"apicheck/internal/classgraph"
	apierrors "apicheck/internal/errors"
)

const pub = classfile.AccPublic

type classDef struct {
	name    string
	access  uint16
	super   string
	ifaces  []string
	methods []string
	fields  []string
}

// build loads public classes with public members; each member is written as
// name+descriptor with the descriptor starting at '(' for methods and after
// ':' for fields.
func build(t *testing.T, defs ...classDef) *classgraph.Registry {
	t.Helper()
	r := classgraph.NewRegistry(classgraph.NamingPolicy{})
	for _, s := range defs {
		access := s.access
		if access == 0 {
			access = pub
		}
		facts := classfile.ClassFacts{Name: s.name, Access: access, SuperName: s.super, Interfaces: s.ifaces}
		for _, m := range s.methods {
			i := indexOf(m, '(')
			facts.Methods = append(facts.Methods, classfile.MemberFacts{Access: pub, Name: m[:i], Descriptor: m[i:]})
		}
		for _, f := range s.fields {
			i := indexOf(f, ':')
			facts.Fields = append(facts.Fields, classfile.MemberFacts{Access: pub, Name: f[:i], Descriptor: f[i+1:]})
		}
		require.NoError(t, r.Load(&facts))
	}
	require.NoError(t, r.ResolveAll())
	return r
}

func indexOf(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return len(s)
}

func record(t *testing.T, before, after *classgraph.Registry) *Recorder {
	t.Helper()
	rec := NewRecorder()
	require.NoError(t, Diff(before, after, rec.Listener()))
	return rec
}

type flat struct {
	Kind    EventKind
	Class   string
	Subject string
}

func flatten(events []Event) []flat {
	out := make([]flat, len(events))
	for i, e := range events {
		out[i] = flat{e.Kind, e.Class, e.Subject}
	}
	return out
}

func TestDiff_AddedMethodExample(t *testing.T) {
	before := build(t, classDef{name: "P/A", super: "java/lang/Object", methods: []string{"foo()V"}})
	after := build(t, classDef{name: "P/A", super: "java/lang/Object", methods: []string{"foo()V", "bar()V"}})

	rec := record(t, before, after)

	assert.Equal(t, []flat{
		{EventClassChanged, "P/A", ""},
		{EventMethodAdded, "P/A", "bar()V"},
	}, flatten(rec.Events))
}

func TestDiff_SelfDiffIsUnchanged(t *testing.T) {
	defs := []classDef{
		{name: "p/Base", super: "java/lang/Object", methods: []string{"run()V"}, fields: []string{"X:I"}},
		{name: "p/Child", super: "p/Base", ifaces: []string{"p/I"}, methods: []string{"go(I)V"}},
		{name: "p/I", methods: []string{"close()V"}},
	}
	before := build(t, defs...)
	after := build(t, defs...)

	rec := record(t, before, after)

	assert.Equal(t, 3, rec.Count(EventClassUnchanged))
	assert.Len(t, rec.Events, 3)
	for _, kind := range []EventKind{EventClassAdded, EventClassRemoved, EventClassChanged, EventMethodAdded, EventFieldRemoved} {
		assert.Zero(t, rec.Count(kind), kind)
	}
}

func TestDiff_SameRegistryAgainstItself(t *testing.T) {
	r := build(t, classDef{name: "p/A", methods: []string{"a()V"}})
	rec := record(t, r, r)
	assert.Equal(t, []flat{{EventClassUnchanged, "p/A", ""}}, flatten(rec.Events))
}

func TestDiff_RenameIsRemovePlusAdd(t *testing.T) {
	before := build(t, classDef{name: "p/Old", methods: []string{"m()V"}})
	after := build(t, classDef{name: "p/New", methods: []string{"m()V"}})

	rec := record(t, before, after)

	assert.Equal(t, []flat{
		{EventClassAdded, "p/New", ""},
		{EventClassRemoved, "p/Old", ""},
	}, flatten(rec.Events))
}

func TestDiff_ClassChangedFiresOnce(t *testing.T) {
	before := build(t,
		classDef{name: "p/A", super: "p/S1", ifaces: []string{"p/I1"}, methods: []string{"m1()V"}, fields: []string{"f1:I"}},
	)
	after := build(t,
		classDef{name: "p/A", super: "p/S2", ifaces: []string{"p/I2"}, methods: []string{"m2()V"}, fields: []string{"f2:I"}},
	)

	rec := record(t, before, after)

	assert.Equal(t, []flat{
		{EventClassChanged, "p/A", ""},
		{EventSuperclassChanged, "p/A", ""},
		{EventInterfaceRemoved, "p/A", "p/I1"},
		{EventInterfaceAdded, "p/A", "p/I2"},
		{EventMethodRemoved, "p/A", "m1()V"},
		{EventMethodAdded, "p/A", "m2()V"},
		{EventFieldRemoved, "p/A", "f1I"},
		{EventFieldAdded, "p/A", "f2I"},
	}, flatten(rec.Events))

	sc := rec.Filter(EventSuperclassChanged)
	require.Len(t, sc, 1)
	assert.Equal(t, "p/S1", sc[0].OldValue)
	assert.Equal(t, "p/S2", sc[0].NewValue)
}

func TestDiff_SuperclassComparedByName(t *testing.T) {
	// The superclass itself gained a method; only the subclass's inherited
	// surface reports it, the superclass identity is unchanged.
	before := build(t,
		classDef{name: "p/Base", methods: []string{"a()V"}},
		classDef{name: "p/Sub", super: "p/Base"},
	)
	after := build(t,
		classDef{name: "p/Base", methods: []string{"a()V", "b()V"}},
		classDef{name: "p/Sub", super: "p/Base"},
	)

	rec := record(t, before, after)

	assert.Zero(t, rec.Count(EventSuperclassChanged))
	assert.Equal(t, []flat{
		{EventClassChanged, "p/Base", ""},
		{EventMethodAdded, "p/Base", "b()V"},
		{EventClassChanged, "p/Sub", ""},
		{EventMethodAdded, "p/Sub", "b()V"},
	}, flatten(rec.Events))
}

func TestDiff_InheritedConstructorRemoved(t *testing.T) {
	before := build(t,
		classDef{name: "p/Base", methods: []string{"<init>(I)V"}},
		classDef{name: "p/Sub", super: "p/Base", methods: []string{"<init>()V"}},
	)
	after := build(t,
		classDef{name: "p/Base"},
		classDef{name: "p/Sub", super: "p/Base", methods: []string{"<init>()V"}},
	)

	rec := record(t, before, after)

	assert.Equal(t, []flat{
		{EventClassChanged, "p/Base", ""},
		{EventMethodRemoved, "p/Base", "<init>(I)V"},
		{EventClassChanged, "p/Sub", ""},
		{EventMethodRemoved, "p/Sub", "<init>(I)V"},
	}, flatten(rec.Events))
}

func TestDiff_SuperclassRemovedFromRoot(t *testing.T) {
	before := build(t, classDef{name: "p/A", super: "p/Base"})
	after := build(t, classDef{name: "p/A"})

	rec := record(t, before, after)

	events := rec.Filter(EventSuperclassChanged)
	require.Len(t, events, 1)
	assert.Equal(t, "p/Base", events[0].OldValue)
	assert.Equal(t, "", events[0].NewValue)
}

func TestDiff_OrderingIsAscending(t *testing.T) {
	before := build(t,
		classDef{name: "p/Z"},
		classDef{name: "p/Keep", methods: []string{"c()V", "a()V"}},
		classDef{name: "p/Gone2"},
		classDef{name: "p/Gone1"},
	)
	after := build(t,
		classDef{name: "p/New2"},
		classDef{name: "p/Keep", methods: []string{"z()V", "b()V"}},
		classDef{name: "p/New1"},
		classDef{name: "p/Z"},
	)

	rec := record(t, before, after)

	assert.Equal(t, []flat{
		{EventClassAdded, "p/New1", ""},
		{EventClassAdded, "p/New2", ""},
		{EventClassRemoved, "p/Gone1", ""},
		{EventClassRemoved, "p/Gone2", ""},
		{EventClassChanged, "p/Keep", ""},
		{EventMethodRemoved, "p/Keep", "a()V"},
		{EventMethodRemoved, "p/Keep", "c()V"},
		{EventMethodAdded, "p/Keep", "b()V"},
		{EventMethodAdded, "p/Keep", "z()V"},
		{EventClassUnchanged, "p/Z", ""},
	}, flatten(rec.Events))
}

func TestDiff_Symmetry(t *testing.T) {
	a := build(t,
		classDef{name: "p/Common", ifaces: []string{"p/I1"}, methods: []string{"x()V", "y()V"}, fields: []string{"F:I"}},
		classDef{name: "p/OnlyA"},
	)
	b := build(t,
		classDef{name: "p/Common", ifaces: []string{"p/I2"}, methods: []string{"y()V", "z()V"}, fields: []string{"G:J"}},
		classDef{name: "p/OnlyB"},
	)

	ab := record(t, a, b)
	ba := record(t, b, a)

	pairs := [][2]EventKind{
		{EventClassAdded, EventClassRemoved},
		{EventMethodAdded, EventMethodRemoved},
		{EventFieldAdded, EventFieldRemoved},
		{EventInterfaceAdded, EventInterfaceRemoved},
	}
	for _, p := range pairs {
		assert.Equal(t, subjects(ab.Filter(p[0])), subjects(ba.Filter(p[1])), "%s vs %s", p[0], p[1])
		assert.Equal(t, subjects(ab.Filter(p[1])), subjects(ba.Filter(p[0])), "%s vs %s", p[1], p[0])
	}
}

func subjects(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Class+"#"+e.Subject)
	}
	sort.Strings(out)
	return out
}

func TestDiff_OnlyVisibleAPIParticipates(t *testing.T) {
	before := build(t, classDef{name: "p/Hidden", access: classfile.AccFinal, methods: []string{"m()V"}})
	after := build(t, classDef{name: "p/Hidden", access: classfile.AccFinal})

	rec := record(t, before, after)
	assert.Empty(t, rec.Events)
}

func TestDiff_NonVisibleMemberChangesIgnored(t *testing.T) {
	before := classgraph.NewRegistry(classgraph.NamingPolicy{})
	require.NoError(t, before.Load(&classfile.ClassFacts{Name: "p/A", Access: pub, Methods: []classfile.MemberFacts{
		{Access: classfile.AccPrivate, Name: "gone", Descriptor: "()V"},
	}}))
	require.NoError(t, before.ResolveAll())
	after := build(t, classDef{name: "p/A"})

	rec := record(t, before, after)
	assert.Equal(t, []flat{{EventClassUnchanged, "p/A", ""}}, flatten(rec.Events))
}

func TestDiff_InvalidInput(t *testing.T) {
	resolved := build(t, classDef{name: "p/A"})
	unresolved := classgraph.NewRegistry(classgraph.NamingPolicy{})

	tests := []struct {
		name          string
		before, after *classgraph.Registry
	}{
		{"nil before", nil, resolved},
		{"nil after", resolved, nil},
		{"unresolved after", resolved, unresolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			err := Diff(tt.before, tt.after, rec.Listener())
			require.Error(t, err)
			assert.Equal(t, apierrors.InvalidInput, apierrors.CodeOf(err))
			assert.Empty(t, rec.Events)
		})
	}
}

func TestDiff_EmptyListenerIsInert(t *testing.T) {
	before := build(t, classDef{name: "p/A", methods: []string{"a()V"}})
	after := build(t, classDef{name: "p/B"})
	assert.NoError(t, Diff(before, after, Listener{}))
}

func TestTee(t *testing.T) {
	before := build(t, classDef{name: "p/A", methods: []string{"a()V"}})
	after := build(t, classDef{name: "p/A", methods: []string{"b()V"}})

	first, second := NewRecorder(), NewRecorder()
	var removed []string
	partial := Listener{MethodRemoved: func(_, _ *classgraph.Class, m classgraph.Method) {
		removed = append(removed, m.Signature())
	}}

	require.NoError(t, Diff(before, after, Tee(first.Listener(), partial, second.Listener())))

	assert.Equal(t, first.Events, second.Events)
	assert.Equal(t, []string{"a()V"}, removed)
	assert.Equal(t, 1, first.Count(EventClassChanged))
}

func TestDiffSorted(t *testing.T) {
	id := func(s string) string { return s }

	removed, added := diffSorted([]string{"a", "c", "d"}, []string{"b", "c", "e"}, id)
	assert.Equal(t, []string{"a", "d"}, removed)
	assert.Equal(t, []string{"b", "e"}, added)

	removed, added = diffSorted(nil, []string{"x"}, id)
	assert.Empty(t, removed)
	assert.Equal(t, []string{"x"}, added)
}
