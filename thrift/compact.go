package thrift

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Compact protocol constants. The compact sub-format packs the same logical
// data model as binary but uses zigzag varints, field id deltas and its own
// per-type codes.
const (
	compactProtocolID = 0x82
	compactVersion    = 1
	compactKindShift  = 5
)

// compactTypes maps wire tags to their compact per-type codes. Bool has two
// codes (true/false) and is handled separately.
var compactTypes = map[TypeTag]byte{
	TypeStop:   0x00,
	TypeByte:   0x03,
	TypeI16:    0x04,
	TypeI32:    0x05,
	TypeI64:    0x06,
	TypeDouble: 0x07,
	TypeString: 0x08,
	TypeList:   0x09,
	TypeSet:    0x0a,
	TypeMap:    0x0b,
	TypeStruct: 0x0c,
}

const (
	compactBoolTrue  = 0x01
	compactBoolFalse = 0x02
)

// CompactProtocol writes the Thrift compact protocol. Field ids are
// delta-encoded against the previous id in the enclosing struct, so the
// writer keeps a stack of last-written ids across nested structs. Bool
// fields fold the value into the field header, which requires deferring the
// header until WriteBool runs.
type CompactProtocol struct {
	buf bytes.Buffer

	lastFieldID int16
	fieldStack  []int16

	pendingBoolField bool
	pendingBoolID    int16
}

// NewCompactProtocol returns an empty compact protocol writer.
func NewCompactProtocol() *CompactProtocol {
	return &CompactProtocol{}
}

func (p *CompactProtocol) WriteMessageBegin(method string, kind MessageKind, seqID int32) {
	p.buf.WriteByte(compactProtocolID)
	p.buf.WriteByte(byte(compactVersion | (int32(kind) << compactKindShift)))
	p.writeVarint(uint64(uint32(seqID)))
	p.WriteString(method)
}

func (p *CompactProtocol) WriteStructBegin() {
	p.fieldStack = append(p.fieldStack, p.lastFieldID)
	p.lastFieldID = 0
}

func (p *CompactProtocol) WriteFieldBegin(tag TypeTag, id int16) {
	if tag == TypeBool {
		// Header is written by WriteBool, which knows the value.
		p.pendingBoolField = true
		p.pendingBoolID = id
		return
	}

	p.writeFieldHeader(compactTypes[tag], id)
}

func (p *CompactProtocol) WriteFieldStop() {
	p.buf.WriteByte(0x00)
}

func (p *CompactProtocol) WriteStructEnd() {
	if n := len(p.fieldStack); n > 0 {
		p.lastFieldID = p.fieldStack[n-1]
		p.fieldStack = p.fieldStack[:n-1]
	}
}

func (p *CompactProtocol) WriteListBegin(elem TypeTag, size int) {
	if size < 15 {
		p.buf.WriteByte(byte(size<<4) | p.elemType(elem))
		return
	}

	p.buf.WriteByte(0xf0 | p.elemType(elem))
	p.writeVarint(uint64(size))
}

func (p *CompactProtocol) WriteSetBegin(elem TypeTag, size int) {
	p.WriteListBegin(elem, size)
}

func (p *CompactProtocol) WriteMapBegin(key, value TypeTag, size int) {
	if size == 0 {
		p.buf.WriteByte(0x00)
		return
	}

	p.writeVarint(uint64(size))
	p.buf.WriteByte(p.elemType(key)<<4 | p.elemType(value))
}

func (p *CompactProtocol) WriteBool(v bool) {
	code := byte(compactBoolFalse)
	if v {
		code = compactBoolTrue
	}

	if p.pendingBoolField {
		p.pendingBoolField = false
		p.writeFieldHeader(code, p.pendingBoolID)
		return
	}

	// Container element: the value is the bare type code.
	p.buf.WriteByte(code)
}

func (p *CompactProtocol) WriteI8(v int8) {
	p.buf.WriteByte(byte(v))
}

func (p *CompactProtocol) WriteI16(v int16) {
	p.writeVarint(zigzag(int64(v)))
}

func (p *CompactProtocol) WriteI32(v int32) {
	p.writeVarint(zigzag(int64(v)))
}

func (p *CompactProtocol) WriteI64(v int64) {
	p.writeVarint(zigzag(v))
}

func (p *CompactProtocol) WriteDouble(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	p.buf.Write(b[:])
}

func (p *CompactProtocol) WriteString(v string) {
	p.writeVarint(uint64(len(v)))
	p.buf.WriteString(v)
}

func (p *CompactProtocol) Bytes() []byte {
	return p.buf.Bytes()
}

// writeFieldHeader writes a short-form header (id delta packed with the
// type code) when the delta fits in four bits; otherwise the long form with
// a zigzag id.
func (p *CompactProtocol) writeFieldHeader(typeCode byte, id int16) {
	delta := int32(id) - int32(p.lastFieldID)

	if delta > 0 && delta <= 15 {
		p.buf.WriteByte(byte(delta<<4) | typeCode)
	} else {
		p.buf.WriteByte(typeCode)
		p.writeVarint(zigzag(int64(id)))
	}

	p.lastFieldID = id
}

// elemType returns the compact type code used for container element tags,
// where bool is always the "true" code.
func (p *CompactProtocol) elemType(tag TypeTag) byte {
	if tag == TypeBool {
		return compactBoolTrue
	}

	return compactTypes[tag]
}

func (p *CompactProtocol) writeVarint(v uint64) {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(b[:], v)
	p.buf.Write(b[:n])
}

// zigzag maps signed values to unsigned so small magnitudes stay small on
// the wire regardless of sign.
func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}
