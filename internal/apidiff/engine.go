package apidiff

import (
	"apicheck/internal/classgraph"
	apierrors "apicheck/internal/errors"
)

// Diff compares the visible API of two resolved registries and reports to l.
//
// Events arrive in this order: added classes, removed classes, then every
// class present on both sides. For a retained class ClassChanged fires at
// most once, ahead of its detail events, and ClassUnchanged fires otherwise.
// Within each group names and signatures ascend, removals before additions.
func Diff(before, after *classgraph.Registry, l Listener) error {
	if err := checkInput("before", before); err != nil {
		return err
	}
	if err := checkInput("after", after); err != nil {
		return err
	}

	removed, added := diffSorted(before.VisibleAPI(), after.VisibleAPI(), (*classgraph.Class).Name)
	for _, c := range added {
		l.classAdded(c)
	}
	for _, c := range removed {
		l.classRemoved(c)
	}

	for _, name := range retainedNames(before, after) {
		b, _ := before.LookupVisible(name)
		a, _ := after.LookupVisible(name)
		diffClass(b, a, l)
	}
	return nil
}

func checkInput(side string, r *classgraph.Registry) error {
	if r == nil {
		return apierrors.Newf(apierrors.InvalidInput, "%s registry is nil", side)
	}
	if !r.Resolved() {
		return apierrors.Newf(apierrors.InvalidInput, "%s registry has not been resolved", side)
	}
	return nil
}

func retainedNames(before, after *classgraph.Registry) []string {
	var names []string
	for _, name := range after.VisibleNames() {
		if _, ok := before.LookupVisible(name); ok {
			names = append(names, name)
		}
	}
	return names
}

// classDiff latches the first difference found for one retained class so the
// ClassChanged header is emitted exactly once.
type classDiff struct {
	before, after *classgraph.Class
	listener      Listener
	changed       bool
}

func (d *classDiff) markChanged() {
	if !d.changed {
		d.changed = true
		d.listener.classChanged(d.before, d.after)
	}
}

func (d *classDiff) done() {
	if !d.changed {
		d.listener.classUnchanged(d.after)
	}
}

func diffClass(before, after *classgraph.Class, l Listener) {
	d := &classDiff{before: before, after: after, listener: l}

	if before.SuperclassName() != after.SuperclassName() {
		d.markChanged()
		l.superclassChanged(before, after)
	}

	removedIfaces, addedIfaces := diffSorted(before.Interfaces(), after.Interfaces(), (*classgraph.Class).Name)
	if len(removedIfaces)+len(addedIfaces) > 0 {
		d.markChanged()
		for _, iface := range removedIfaces {
			l.interfaceRemoved(before, after, iface)
		}
		for _, iface := range addedIfaces {
			l.interfaceAdded(before, after, iface)
		}
	}

	removedMethods, addedMethods := diffSorted(before.VisibleMethods(), after.VisibleMethods(), classgraph.Method.Signature)
	if len(removedMethods)+len(addedMethods) > 0 {
		d.markChanged()
		for _, m := range removedMethods {
			l.methodRemoved(before, after, m)
		}
		for _, m := range addedMethods {
			l.methodAdded(before, after, m)
		}
	}

	removedFields, addedFields := diffSorted(before.VisibleFields(), after.VisibleFields(), classgraph.Field.Signature)
	if len(removedFields)+len(addedFields) > 0 {
		d.markChanged()
		for _, f := range removedFields {
			l.fieldRemoved(before, after, f)
		}
		for _, f := range addedFields {
			l.fieldAdded(before, after, f)
		}
	}

	d.done()
}

// diffSorted walks two slices sorted ascending by key and returns the
// elements only in before and only in after, both still ascending.
func diffSorted[T any](before, after []T, key func(T) string) (removed, added []T) {
	i, j := 0, 0
	for i < len(before) && j < len(after) {
		kb, ka := key(before[i]), key(after[j])
		switch {
		case kb == ka:
			i++
			j++
		case kb < ka:
			removed = append(removed, before[i])
			i++
		default:
			added = append(added, after[j])
			j++
		}
	}
	removed = append(removed, before[i:]...)
	added = append(added, after[j:]...)
	return removed, added
}
