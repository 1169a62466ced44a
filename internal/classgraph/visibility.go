// Package classgraph models the classes, methods and fields of one
// distribution and resolves each class's effective API surface, including
// members inherited from superclasses and interfaces.
package classgraph

import "apicheck/internal/classfile"

// Visibility is the ordered access level of a class or member.
type Visibility int

const (
	Private Visibility = iota
	PackageProtected
	Protected
	Public
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case PackageProtected:
		return "package"
	case Protected:
		return "protected"
	case Public:
		return "public"
	default:
		return "unknown"
	}
}

// VisibilityFromAccess classifies raw access flags. Only the low byte takes
// part; PUBLIC wins over PROTECTED, and no visibility bit at all means
// package-private.
func VisibilityFromAccess(access uint16) Visibility {
	flags := access & 0xff
	switch {
	case flags&classfile.AccPublic != 0:
		return Public
	case flags&classfile.AccProtected != 0:
		return Protected
	case flags&classfile.AccPrivate == 0:
		return PackageProtected
	default:
		return Private
	}
}
