package classfile

import (
	"bytes"
	"encoding/binary"
)

// Encode renders facts as a minimal, valid class file (version 52.0 unless
// the facts carry one). Members get no attributes. Used to build fixtures.
func Encode(f ClassFacts) []byte {
	return encode(f, false)
}

type poolBuilder struct {
	entries bytes.Buffer
	count   uint16
	utf8s   map[string]uint16
	classes map[string]uint16
}

func newPoolBuilder() *poolBuilder {
	return &poolBuilder{count: 1, utf8s: map[string]uint16{}, classes: map[string]uint16{}}
}

func (p *poolBuilder) utf8(s string) uint16 {
	if idx, ok := p.utf8s[s]; ok {
		return idx
	}
	raw := []byte(s)
	p.entries.WriteByte(tagUtf8)
	_ = binary.Write(&p.entries, binary.BigEndian, uint16(len(raw)))
	p.entries.Write(raw)
	idx := p.count
	p.count++
	p.utf8s[s] = idx
	return idx
}

func (p *poolBuilder) class(name string) uint16 {
	if idx, ok := p.classes[name]; ok {
		return idx
	}
	nameIdx := p.utf8(name)
	p.entries.WriteByte(tagClass)
	_ = binary.Write(&p.entries, binary.BigEndian, nameIdx)
	idx := p.count
	p.count++
	p.classes[name] = idx
	return idx
}

// long appends a Long constant, which takes two pool slots.
func (p *poolBuilder) long(v uint64) {
	p.entries.WriteByte(tagLong)
	_ = binary.Write(&p.entries, binary.BigEndian, v)
	p.count += 2
}

func encode(f ClassFacts, withLong bool) []byte {
	pool := newPoolBuilder()
	if withLong {
		pool.long(42)
	}
	this := pool.class(f.Name)
	var super uint16
	if f.SuperName != "" {
		super = pool.class(f.SuperName)
	}
	ifaces := make([]uint16, len(f.Interfaces))
	for i, name := range f.Interfaces {
		ifaces[i] = pool.class(name)
	}
	type member struct{ access, name, desc uint16 }
	toMembers := func(ms []MemberFacts) []member {
		out := make([]member, len(ms))
		for i, m := range ms {
			out[i] = member{m.Access, pool.utf8(m.Name), pool.utf8(m.Descriptor)}
		}
		return out
	}
	fields := toMembers(f.Fields)
	methods := toMembers(f.Methods)

	major := f.MajorVersion
	if major == 0 {
		major = 52
	}

	var out bytes.Buffer
	w := func(v interface{}) { _ = binary.Write(&out, binary.BigEndian, v) }
	w(uint32(magic))
	w(f.MinorVersion)
	w(major)
	w(pool.count)
	out.Write(pool.entries.Bytes())
	w(f.Access)
	w(this)
	w(super)
	w(uint16(len(ifaces)))
	for _, idx := range ifaces {
		w(idx)
	}
	for _, ms := range [][]member{fields, methods} {
		w(uint16(len(ms)))
		for _, m := range ms {
			w(m.access)
			w(m.name)
			w(m.desc)
			w(uint16(0))
		}
	}
	w(uint16(0)) // class attributes
	return out.Bytes()
}
