// Package thrift implements a schemaless codec for the Thrift binary
// protocol: message envelopes plus fully recursive typed-value trees
// (structs, lists, sets, maps, primitives) decoded and encoded without any
// IDL. Decoding reads the standard binary protocol; encoding can emit either
// the binary or the compact sub-format.
package thrift

import (
	"fmt"

	"github.com/pkg/errors"
)

// TypeTag is a Thrift wire type code.
type TypeTag byte

// Wire type codes from the Thrift binary protocol. This is a closed set;
// anything else on the wire is reported as unknown-<n> and never becomes a
// first-class tag.
const (
	TypeStop   TypeTag = 0
	TypeBool   TypeTag = 2
	TypeByte   TypeTag = 3
	TypeDouble TypeTag = 4
	TypeI16    TypeTag = 6
	TypeI32    TypeTag = 8
	TypeI64    TypeTag = 10
	TypeString TypeTag = 11
	TypeStruct TypeTag = 12
	TypeMap    TypeTag = 13
	TypeSet    TypeTag = 14
	TypeList   TypeTag = 15
)

// MessageKind is the message envelope type.
type MessageKind int32

const (
	KindCall      MessageKind = 1
	KindReply     MessageKind = 2
	KindException MessageKind = 3
	KindOneway    MessageKind = 4
)

// MaxDepth bounds recursion while decoding or encoding nested containers.
// The wire format itself has no depth limit, so without this an adversarial
// capture could exhaust the stack.
const MaxDepth = 64

var (
	// ErrUnsupportedType is returned when an encode document names a type
	// outside the supported set. Encode-time type errors are always fatal.
	ErrUnsupportedType = errors.New("unsupported thrift type")

	// ErrMaxDepth is returned when a value tree nests deeper than MaxDepth.
	ErrMaxDepth = errors.New("max nesting depth exceeded")
)

var tagNames = map[TypeTag]string{
	TypeBool:   "bool",
	TypeByte:   "i8",
	TypeDouble: "double",
	TypeI16:    "i16",
	TypeI32:    "i32",
	TypeI64:    "i64",
	TypeString: "string",
	TypeStruct: "struct",
	TypeMap:    "map",
	TypeSet:    "set",
	TypeList:   "list",
}

var nameTags = map[string]TypeTag{
	"bool":   TypeBool,
	"i8":     TypeByte,
	"byte":   TypeByte, // accepted alias for i8
	"double": TypeDouble,
	"i16":    TypeI16,
	"i32":    TypeI32,
	"i64":    TypeI64,
	"string": TypeString,
	"struct": TypeStruct,
	"map":    TypeMap,
	"set":    TypeSet,
	"list":   TypeList,
}

var kindNames = map[MessageKind]string{
	KindCall:      "call",
	KindReply:     "reply",
	KindException: "exception",
	KindOneway:    "oneway",
}

var nameKinds = map[string]MessageKind{
	"call":      KindCall,
	"reply":     KindReply,
	"exception": KindException,
	"oneway":    KindOneway,
}

// TypeName returns the symbolic name for a wire tag, or "unknown-<n>" for
// tags outside the supported set.
func TypeName(tag TypeTag) string {
	if name, ok := tagNames[tag]; ok {
		return name
	}

	return fmt.Sprintf("unknown-%d", tag)
}

// TypeFromName resolves a symbolic type name back to its wire tag.
func TypeFromName(name string) (TypeTag, error) {
	tag, ok := nameTags[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnsupportedType, "'%s'", name)
	}

	return tag, nil
}

// KindName returns the symbolic name for a message kind, or "unknown".
func KindName(kind MessageKind) string {
	if name, ok := kindNames[kind]; ok {
		return name
	}

	return "unknown"
}

// KindFromName resolves a symbolic message kind name.
func KindFromName(name string) (MessageKind, error) {
	kind, ok := nameKinds[name]
	if !ok {
		return 0, fmt.Errorf("unrecognized message type '%s'", name)
	}

	return kind, nil
}

// IsScalarKey reports whether tag is usable as a map key in the document
// representation. Container-typed keys cannot be stringified losslessly and
// are replaced with complex_key placeholders during decode.
func IsScalarKey(tag TypeTag) bool {
	switch tag {
	case TypeBool, TypeByte, TypeI16, TypeI32, TypeI64, TypeString:
		return true
	default:
		return false
	}
}
