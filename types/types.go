// Package types contains the document types shared between the decode and
// encode paths. A decoded capture is represented as a single Document that
// marshals to the JSON shape users see; the encode path consumes the same
// shape.
package types

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

// Document is the top-level output of a decode and the input of an encode.
// Metadata is *Metadata for a decoded capture and an empty object in the
// error document.
type Document struct {
	Error            string      `json:"error,omitempty"`
	Metadata         interface{} `json:"metadata"`
	Headers          OrderedMap  `json:"headers"`
	Thrift           *MessageDoc `json:"thrift"`
	ThriftParseError bool        `json:"thrift_parse_error,omitempty"`
}

// Metadata mirrors the fixed 9-byte Frugal envelope prefix.
type Metadata struct {
	MessageLength uint32 `json:"message_length"`
	Version       uint8  `json:"version"`
	HeaderLength  uint32 `json:"header_length"`
}

// MessageDoc is the decoded Thrift message envelope plus body. Calls and
// oneways carry their body under Args; replies and exceptions under Reply.
type MessageDoc struct {
	Method string     `json:"method"`
	Type   string     `json:"type"`
	SeqID  int32      `json:"seqid"`
	Args   *StructDoc `json:"args"`
	Reply  *StructDoc `json:"reply,omitempty"`
	Length int        `json:"length"`
	Error  string     `json:"error,omitempty"`
}

// StructDoc is a decoded struct body: fields in wire order.
type StructDoc struct {
	Fields []*FieldDoc `json:"fields"`
}

// FieldDoc is a single decoded field. Value holds a JSON-marshalable
// representation: bool, int64, float64, string, *StructDoc, []interface{},
// OrderedMap or *Note. ElementType/KeyType/ValueType are populated for
// containers so an encode of the document reproduces the original bytes
// without shape inference.
type FieldDoc struct {
	FieldID     int16       `json:"field_id"`
	FieldType   string      `json:"field_type"`
	ElementType string      `json:"element_type,omitempty"`
	KeyType     string      `json:"key_type,omitempty"`
	ValueType   string      `json:"value_type,omitempty"`
	Value       interface{} `json:"value"`
}

// Note is the placeholder value for anything that could not be decoded.
// It is a distinct variant rather than an opaque stand-in so that documents
// stay JSON-serializable and placeholders are never mistaken for data.
type Note struct {
	Note string `json:"note"`
}

// KV is a single ordered key/value entry.
type KV struct {
	Key   string
	Value interface{}
}

// OrderedMap is a string-keyed object that preserves insertion order when
// marshaled. Frugal headers and decoded Thrift maps both present as JSON
// objects whose key order mirrors the wire, which Go maps cannot guarantee.
type OrderedMap []KV

// Set inserts or overwrites key. Last write wins; the original insertion
// position is kept on overwrite.
func (o *OrderedMap) Set(key string, value interface{}) {
	for i := range *o {
		if (*o)[i].Key == key {
			(*o)[i].Value = value
			return
		}
	}

	*o = append(*o, KV{Key: key, Value: value})
}

// Get returns the value for key, if present.
func (o OrderedMap) Get(key string) (interface{}, bool) {
	for i := range o {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}

	return nil, false
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (o OrderedMap) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBufferString("{")

	for i, kv := range o {
		if i > 0 {
			buf.WriteString(",")
		}

		key, err := jsoniter.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}

		val, err := jsoniter.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteString(":")
		buf.Write(val)
	}

	buf.WriteString("}")

	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order.
func (o *OrderedMap) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(jsoniter.ConfigCompatibleWithStandardLibrary, data)

	*o = (*o)[:0]

	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		var value interface{}
		it.ReadVal(&value)
		o.Set(key, value)
		return true
	})

	return iter.Error
}

// ErrorDocument builds the structured document emitted when a capture cannot
// be decoded at all. Decode never returns an error to its caller; it returns
// this instead.
func ErrorDocument(err error) *Document {
	return &Document{
		Error:    "Failed to decode message: " + err.Error(),
		Metadata: struct{}{},
		Headers:  OrderedMap{},
		Thrift:   UnknownMessage(),
	}
}

// UnknownMessage is the placeholder message document used when no Thrift
// message could be recovered from the capture.
func UnknownMessage() *MessageDoc {
	return &MessageDoc{
		Method: "unknown",
		Type:   "unknown",
		SeqID:  0,
		Args:   nil,
	}
}
