package thrift

import (
	"bytes"
	"encoding/binary"
	"math"
)

// binaryVersionMask and binaryVersion1 are the strict binary protocol
// message header constants: the first four bytes of a strict message are
// version | message kind.
const (
	binaryVersionMask = 0xffff0000
	binaryVersion1    = 0x80010000
)

// BinaryProtocol writes the standard (strict) Thrift binary protocol:
// big-endian fixed-width integers, 4-byte length-prefixed strings, one tag
// byte plus 2-byte id per field.
type BinaryProtocol struct {
	buf bytes.Buffer
}

// NewBinaryProtocol returns an empty binary protocol writer.
func NewBinaryProtocol() *BinaryProtocol {
	return &BinaryProtocol{}
}

func (p *BinaryProtocol) WriteMessageBegin(method string, kind MessageKind, seqID int32) {
	p.WriteI32(int32(binaryVersion1 | uint32(kind)))
	p.WriteString(method)
	p.WriteI32(seqID)
}

func (p *BinaryProtocol) WriteStructBegin() {}

func (p *BinaryProtocol) WriteFieldBegin(tag TypeTag, id int16) {
	p.buf.WriteByte(byte(tag))
	p.WriteI16(id)
}

func (p *BinaryProtocol) WriteFieldStop() {
	p.buf.WriteByte(byte(TypeStop))
}

func (p *BinaryProtocol) WriteStructEnd() {}

func (p *BinaryProtocol) WriteListBegin(elem TypeTag, size int) {
	p.buf.WriteByte(byte(elem))
	p.WriteI32(int32(size))
}

func (p *BinaryProtocol) WriteSetBegin(elem TypeTag, size int) {
	p.WriteListBegin(elem, size)
}

func (p *BinaryProtocol) WriteMapBegin(key, value TypeTag, size int) {
	p.buf.WriteByte(byte(key))
	p.buf.WriteByte(byte(value))
	p.WriteI32(int32(size))
}

func (p *BinaryProtocol) WriteBool(v bool) {
	if v {
		p.buf.WriteByte(1)
	} else {
		p.buf.WriteByte(0)
	}
}

func (p *BinaryProtocol) WriteI8(v int8) {
	p.buf.WriteByte(byte(v))
}

func (p *BinaryProtocol) WriteI16(v int16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	p.buf.Write(b[:])
}

func (p *BinaryProtocol) WriteI32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	p.buf.Write(b[:])
}

func (p *BinaryProtocol) WriteI64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	p.buf.Write(b[:])
}

func (p *BinaryProtocol) WriteDouble(v float64) {
	p.WriteI64(int64(math.Float64bits(v)))
}

func (p *BinaryProtocol) WriteString(v string) {
	p.WriteI32(int32(len(v)))
	p.buf.WriteString(v)
}

func (p *BinaryProtocol) Bytes() []byte {
	return p.buf.Bytes()
}
