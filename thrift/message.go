package thrift

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/batchcorp/frugalctl/types"
)

// DecodeMessage decodes a Thrift binary protocol message: envelope (method,
// kind, sequence id) followed by the body struct. Both the strict header
// (version word first) and the old unframed header (name length first) are
// accepted. The body lands under "args" for calls/oneways and "reply" for
// replies/exceptions.
func DecodeMessage(data []byte) (*types.MessageDoc, error) {
	d := NewDecoder(data)

	method, kind, seqID, err := readMessageBegin(d)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read message header")
	}

	body, err := d.ReadStruct()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read message body")
	}

	doc := &types.MessageDoc{
		Method: method,
		Type:   KindName(kind),
		SeqID:  seqID,
		Length: len(data),
	}

	switch kind {
	case KindReply, KindException:
		doc.Reply = body
	default:
		doc.Args = body
	}

	return doc, nil
}

func readMessageBegin(d *Decoder) (string, MessageKind, int32, error) {
	first, err := d.ReadI32()
	if err != nil {
		return "", 0, 0, err
	}

	if first < 0 {
		// Strict header: version word carries the kind in the low byte.
		if uint32(first)&binaryVersionMask != binaryVersion1 {
			return "", 0, 0, errors.Errorf("bad message version 0x%08x", uint32(first))
		}

		kind := MessageKind(uint32(first) & 0xff)

		method, err := d.ReadString()
		if err != nil {
			return "", 0, 0, err
		}

		seqID, err := d.ReadI32()
		if err != nil {
			return "", 0, 0, err
		}

		return method, kind, seqID, nil
	}

	// Old-style header: the first word is the method name length.
	if err := d.require(int(first)); err != nil {
		return "", 0, 0, err
	}

	method := string(d.buf[d.off : d.off+int(first)])
	d.off += int(first)

	rawKind, err := d.ReadByte()
	if err != nil {
		return "", 0, 0, err
	}

	seqID, err := d.ReadI32()
	if err != nil {
		return "", 0, 0, err
	}

	return method, MessageKind(rawKind), seqID, nil
}

// EncodeMessage encodes the "thrift" sub-document back to wire bytes using
// the binary sub-format, or compact when requested. The sub-format affects
// only integer/tag packing; the walker in encode.go drives both identically.
//
// Type errors in the document (unknown type names, malformed bodies) are
// fatal: emitting bytes that do not match the document would be worse than
// failing.
func EncodeMessage(doc gjson.Result, compact bool) ([]byte, error) {
	method := doc.Get("method").String()

	kind, err := KindFromName(doc.Get("type").String())
	if err != nil {
		return nil, err
	}

	seqID := int32(doc.Get("seqid").Int())

	p := NewProtocol(compact)
	p.WriteMessageBegin(method, kind, seqID)

	body := doc.Get("args")
	if !body.Exists() || body.Type == gjson.Null {
		body = doc.Get("reply")
	}

	fields := body.Get("fields")
	if !fields.Exists() {
		// No body in the document; emit an empty struct so the result
		// still decodes.
		p.WriteStructBegin()
		p.WriteFieldStop()
		p.WriteStructEnd()

		return p.Bytes(), nil
	}

	if err := encodeStruct(p, fields, 0); err != nil {
		return nil, err
	}

	return p.Bytes(), nil
}
