package thrift

// Protocol is the write side of a Thrift wire sub-format. The binary and
// compact implementations differ only in integer/tag packing; the document
// walker in encode.go drives either one identically.
//
// Write methods accumulate into an in-memory buffer; Bytes returns the
// encoded message. Errors that depend on document contents (unknown type
// names, malformed values) are raised by the walker before the protocol is
// invoked, so the writers themselves are infallible.
type Protocol interface {
	WriteMessageBegin(method string, kind MessageKind, seqID int32)
	WriteStructBegin()
	WriteFieldBegin(tag TypeTag, id int16)
	WriteFieldStop()
	WriteStructEnd()
	WriteListBegin(elem TypeTag, size int)
	WriteSetBegin(elem TypeTag, size int)
	WriteMapBegin(key, value TypeTag, size int)
	WriteBool(v bool)
	WriteI8(v int8)
	WriteI16(v int16)
	WriteI32(v int32)
	WriteI64(v int64)
	WriteDouble(v float64)
	WriteString(v string)
	Bytes() []byte
}

// NewProtocol returns a compact or binary protocol writer.
func NewProtocol(compact bool) Protocol {
	if compact {
		return NewCompactProtocol()
	}

	return NewBinaryProtocol()
}
