package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"

	apierrors "apicheck/internal/errors"
)

const magic = 0xCAFEBABE

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type cpEntry struct {
	tag  byte
	utf8 string
	ref  uint16 // name_index for Class entries
}

// decoder walks a class file held in memory. The first failure is sticky so
// callers can read a run of fields and check err once.
type decoder struct {
	buf []byte
	pos int
	err error
	cp  []cpEntry
}

// Decode reads a whole class file from r and returns its facts.
func Decode(r io.Reader) (*ClassFacts, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apierrors.New(apierrors.ClassMalformed, "reading class bytes", err)
	}
	return Parse(data)
}

// Parse decodes class file bytes.
func Parse(data []byte) (*ClassFacts, error) {
	d := &decoder{buf: data}
	facts := d.classFile()
	if d.err != nil {
		return nil, apierrors.New(apierrors.ClassMalformed, "decoding class file", d.err)
	}
	return facts, nil
}

func (d *decoder) classFile() *ClassFacts {
	if m := d.u4(); d.err == nil && m != magic {
		d.fail("bad magic 0x%08X", m)
		return nil
	}
	facts := &ClassFacts{}
	facts.MinorVersion = d.u2()
	facts.MajorVersion = d.u2()
	d.constantPool()

	facts.Access = d.u2()
	facts.Name = d.className(d.u2())
	if super := d.u2(); super != 0 {
		facts.SuperName = d.className(super)
	}
	count := int(d.u2())
	for i := 0; i < count && d.err == nil; i++ {
		facts.Interfaces = append(facts.Interfaces, d.className(d.u2()))
	}
	facts.Fields = d.members()
	facts.Methods = d.members()
	// Class attributes are not needed; the remaining bytes are left unread.
	if d.err != nil {
		return nil
	}
	if facts.Name == "" {
		d.fail("empty this_class name")
		return nil
	}
	return facts
}

func (d *decoder) constantPool() {
	count := int(d.u2())
	if d.err != nil {
		return
	}
	d.cp = make([]cpEntry, count)
	for i := 1; i < count && d.err == nil; i++ {
		tag := d.u1()
		entry := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			n := int(d.u2())
			entry.utf8 = decodeModifiedUTF8(d.bytes(n))
		case tagClass:
			entry.ref = d.u2()
		case tagString, tagMethodType, tagModule, tagPackage:
			d.skip(2)
		case tagMethodHandle:
			d.skip(3)
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			d.skip(4)
		case tagLong, tagDouble:
			d.skip(8)
			d.cp[i] = entry
			i++ // eight-byte constants occupy two slots
			continue
		default:
			d.fail("unknown constant pool tag %d at index %d", tag, i)
			return
		}
		d.cp[i] = entry
	}
}

func (d *decoder) members() []MemberFacts {
	count := int(d.u2())
	var out []MemberFacts
	for i := 0; i < count && d.err == nil; i++ {
		m := MemberFacts{Access: d.u2()}
		m.Name = d.utf8(d.u2())
		m.Descriptor = d.utf8(d.u2())
		d.skipAttributes()
		out = append(out, m)
	}
	return out
}

func (d *decoder) skipAttributes() {
	count := int(d.u2())
	for i := 0; i < count && d.err == nil; i++ {
		d.skip(2)
		d.skip(int(d.u4()))
	}
}

func (d *decoder) utf8(index uint16) string {
	if d.err != nil {
		return ""
	}
	if int(index) <= 0 || int(index) >= len(d.cp) || d.cp[index].tag != tagUtf8 {
		d.fail("constant %d is not a Utf8 entry", index)
		return ""
	}
	return d.cp[index].utf8
}

func (d *decoder) className(index uint16) string {
	if d.err != nil {
		return ""
	}
	if int(index) <= 0 || int(index) >= len(d.cp) || d.cp[index].tag != tagClass {
		d.fail("constant %d is not a Class entry", index)
		return ""
	}
	return d.utf8(d.cp[index].ref)
}

func (d *decoder) fail(format string, args ...interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

func (d *decoder) need(n int) bool {
	if d.err != nil {
		return false
	}
	if n < 0 || d.pos+n > len(d.buf) {
		d.fail("truncated at offset %d (need %d bytes)", d.pos, n)
		return false
	}
	return true
}

func (d *decoder) u1() byte {
	if !d.need(1) {
		return 0
	}
	b := d.buf[d.pos]
	d.pos++
	return b
}

func (d *decoder) u2() uint16 {
	if !d.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v
}

func (d *decoder) u4() uint32 {
	if !d.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v
}

func (d *decoder) bytes(n int) []byte {
	if !d.need(n) {
		return nil
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b
}

func (d *decoder) skip(n int) {
	if d.need(n) {
		d.pos += n
	}
}

// decodeModifiedUTF8 handles the JVM's variant of UTF-8: NUL is encoded as
// two bytes and supplementary characters as surrogate pairs.
func decodeModifiedUTF8(b []byte) string {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			units = append(units, uint16(c))
			i++
		}
	}
	return string(utf16.Decode(units))
}
