// Package classfile decodes the structural facts apicheck needs from JVM
// class files: names, access flags, supertypes and member descriptors.
// Method bodies, debug data and annotations are skipped.
package classfile

// Access flag bits shared by classes, fields and methods.
const (
	AccPublic    uint16 = 0x0001
	AccPrivate   uint16 = 0x0002
	AccProtected uint16 = 0x0004
	AccStatic    uint16 = 0x0008
	AccFinal     uint16 = 0x0010
	AccInterface uint16 = 0x0200
	AccAbstract  uint16 = 0x0400
	AccModule    uint16 = 0x8000
)

// MemberFacts describes one declared method or field.
type MemberFacts struct {
	Access     uint16
	Name       string
	Descriptor string
}

// ClassFacts is everything the class graph consumes from a single class file.
// SuperName is empty for a root type (java/lang/Object, module-info).
type ClassFacts struct {
	Name         string
	Access       uint16
	SuperName    string
	Interfaces   []string
	Methods      []MemberFacts
	Fields       []MemberFacts
	MajorVersion uint16
	MinorVersion uint16
}

// IsModuleInfo reports whether the facts come from a module-info.class.
func (f *ClassFacts) IsModuleInfo() bool {
	return f.Access&AccModule != 0
}
