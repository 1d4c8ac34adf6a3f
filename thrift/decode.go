package thrift

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/batchcorp/frugalctl/types"
)

// ErrTruncated is returned when a read would run past the end of the buffer.
var ErrTruncated = errors.New("unexpected end of message data")

// Decoder reads binary protocol values from an in-memory buffer. It is not
// safe for concurrent use; a Decoder is built per message and discarded.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a Decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.off
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

func (d *Decoder) require(n int) error {
	if n < 0 || d.off+n > len(d.buf) {
		return errors.Wrapf(ErrTruncated, "need %d byte(s) at offset %d", n, d.off)
	}

	return nil
}

// ReadByte returns a single byte.
func (d *Decoder) ReadByte() (byte, error) {
	if err := d.require(1); err != nil {
		return 0, err
	}

	b := d.buf[d.off]
	d.off++

	return b, nil
}

// ReadBool reads a single byte and interprets any non-zero value as true.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	if err != nil {
		return false, err
	}

	return b != 0, nil
}

// ReadI16 reads a big-endian signed 16-bit integer.
func (d *Decoder) ReadI16() (int16, error) {
	if err := d.require(2); err != nil {
		return 0, err
	}

	v := int16(binary.BigEndian.Uint16(d.buf[d.off:]))
	d.off += 2

	return v, nil
}

// ReadI32 reads a big-endian signed 32-bit integer.
func (d *Decoder) ReadI32() (int32, error) {
	if err := d.require(4); err != nil {
		return 0, err
	}

	v := int32(binary.BigEndian.Uint32(d.buf[d.off:]))
	d.off += 4

	return v, nil
}

// ReadI64 reads a big-endian signed 64-bit integer.
func (d *Decoder) ReadI64() (int64, error) {
	if err := d.require(8); err != nil {
		return 0, err
	}

	v := int64(binary.BigEndian.Uint64(d.buf[d.off:]))
	d.off += 8

	return v, nil
}

// ReadDouble reads a big-endian IEEE 754 double.
func (d *Decoder) ReadDouble() (float64, error) {
	if err := d.require(8); err != nil {
		return 0, err
	}

	v := math.Float64frombits(binary.BigEndian.Uint64(d.buf[d.off:]))
	d.off += 8

	return v, nil
}

// ReadString reads a 4-byte length followed by that many bytes of UTF-8.
func (d *Decoder) ReadString() (string, error) {
	size, err := d.ReadI32()
	if err != nil {
		return "", err
	}

	if size < 0 {
		return "", errors.Errorf("negative string length %d at offset %d", size, d.off-4)
	}

	if err := d.require(int(size)); err != nil {
		return "", err
	}

	s := string(d.buf[d.off : d.off+int(size)])
	d.off += int(size)

	return s, nil
}

// ReadStruct decodes a struct body (field sequence terminated by Stop) from
// the current offset. It is the top-level entry point for message bodies.
func (d *Decoder) ReadStruct() (*types.StructDoc, error) {
	return d.decodeStruct(0)
}

// decodeStruct reads fields until a Stop tag. A field that cannot be decoded
// is recorded as an inline placeholder note instead of failing the whole
// struct; when the bad field makes it impossible to find the next field
// boundary (unknown tag width, truncation), the placeholder is recorded and
// the scan stops with whatever was recovered so far.
func (d *Decoder) decodeStruct(depth int) (*types.StructDoc, error) {
	if depth > MaxDepth {
		return nil, errors.Wrapf(ErrMaxDepth, "struct at offset %d", d.off)
	}

	result := &types.StructDoc{
		Fields: make([]*types.FieldDoc, 0),
	}

	for {
		rawTag, err := d.ReadByte()
		if err != nil {
			return nil, err
		}

		tag := TypeTag(rawTag)
		if tag == TypeStop {
			break
		}

		fieldID, err := d.ReadI16()
		if err != nil {
			return nil, err
		}

		field := &types.FieldDoc{
			FieldID:   fieldID,
			FieldType: TypeName(tag),
		}

		value, err := d.decodeField(field, tag, depth+1)
		if err != nil {
			field.Value = &types.Note{
				Note: fmt.Sprintf("Unknown type %d (skipped): %s", tag, err),
			}
			result.Fields = append(result.Fields, field)

			// No way to locate the next field boundary once a value
			// failed mid-read; return what was recovered.
			return result, nil
		}

		field.Value = value
		result.Fields = append(result.Fields, field)
	}

	return result, nil
}

// decodeField decodes one field value, recording container element types on
// the field document so a later encode does not have to infer them.
func (d *Decoder) decodeField(field *types.FieldDoc, tag TypeTag, depth int) (interface{}, error) {
	switch tag {
	case TypeList, TypeSet:
		values, elem, err := d.decodeList(depth)
		if err != nil {
			return nil, err
		}

		field.ElementType = TypeName(elem)

		return values, nil
	case TypeMap:
		entries, keyTag, valTag, err := d.decodeMap(depth)
		if err != nil {
			return nil, err
		}

		field.KeyType = TypeName(keyTag)
		field.ValueType = TypeName(valTag)

		return entries, nil
	default:
		return d.decodeValue(tag, depth)
	}
}

// decodeValue decodes a single value of the given tag, recursing into
// containers. Unknown tags are an error; the caller decides whether that is
// fatal or becomes an inline placeholder.
func (d *Decoder) decodeValue(tag TypeTag, depth int) (interface{}, error) {
	if depth > MaxDepth {
		return nil, errors.Wrapf(ErrMaxDepth, "value at offset %d", d.off)
	}

	switch tag {
	case TypeBool:
		return d.ReadBool()
	case TypeByte:
		b, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		return int64(int8(b)), nil
	case TypeI16:
		v, err := d.ReadI16()
		if err != nil {
			return nil, err
		}
		return int64(v), nil
	case TypeI32:
		v, err := d.ReadI32()
		if err != nil {
			return nil, err
		}
		return int64(v), nil
	case TypeI64:
		return d.ReadI64()
	case TypeDouble:
		return d.ReadDouble()
	case TypeString:
		return d.ReadString()
	case TypeStruct:
		return d.decodeStruct(depth)
	case TypeList, TypeSet:
		values, _, err := d.decodeList(depth)
		if err != nil {
			return nil, err
		}
		return values, nil
	case TypeMap:
		entries, _, _, err := d.decodeMap(depth)
		if err != nil {
			return nil, err
		}
		return entries, nil
	default:
		return nil, errors.Errorf("unrecognized type tag %d at offset %d", tag, d.off)
	}
}

// decodeList reads a list or set body: element tag, count, then count
// elements. A single element that fails to decode becomes an inline
// placeholder and ends the element scan.
func (d *Decoder) decodeList(depth int) ([]interface{}, TypeTag, error) {
	rawElem, err := d.ReadByte()
	if err != nil {
		return nil, 0, err
	}

	elem := TypeTag(rawElem)

	count, err := d.ReadI32()
	if err != nil {
		return nil, 0, err
	}

	if count < 0 || int(count) > d.Remaining() {
		return nil, 0, errors.Errorf("invalid container size %d at offset %d", count, d.off-4)
	}

	values := make([]interface{}, 0, count)

	for i := int32(0); i < count; i++ {
		value, err := d.decodeValue(elem, depth+1)
		if err != nil {
			values = append(values, &types.Note{
				Note: fmt.Sprintf("Unknown element type %s", TypeName(elem)),
			})
			return values, elem, nil
		}

		values = append(values, value)
	}

	return values, elem, nil
}

// decodeMap reads a map body: key tag, value tag, count, then count
// key/value pairs. Keys are restricted to scalar tags and stringified for
// the document; container-typed keys are skipped and replaced with a
// synthetic complex_key_<index> placeholder.
func (d *Decoder) decodeMap(depth int) (types.OrderedMap, TypeTag, TypeTag, error) {
	rawKey, err := d.ReadByte()
	if err != nil {
		return nil, 0, 0, err
	}

	rawVal, err := d.ReadByte()
	if err != nil {
		return nil, 0, 0, err
	}

	keyTag := TypeTag(rawKey)
	valTag := TypeTag(rawVal)

	count, err := d.ReadI32()
	if err != nil {
		return nil, 0, 0, err
	}

	if count < 0 || int(count) > d.Remaining() {
		return nil, 0, 0, errors.Errorf("invalid map size %d at offset %d", count, d.off-4)
	}

	entries := make(types.OrderedMap, 0, count)

	for i := int32(0); i < count; i++ {
		key, err := d.decodeMapKey(keyTag, depth+1, int(i))
		if err != nil {
			return nil, 0, 0, err
		}

		value, err := d.decodeValue(valTag, depth+1)
		if err != nil {
			entries.Set(key, &types.Note{
				Note: fmt.Sprintf("Unknown value type %s", TypeName(valTag)),
			})
			return entries, keyTag, valTag, nil
		}

		entries.Set(key, value)
	}

	return entries, keyTag, valTag, nil
}

// decodeMapKey reads one map key and stringifies it. Non-scalar keys are
// skipped on the wire and replaced with a placeholder name.
func (d *Decoder) decodeMapKey(tag TypeTag, depth, index int) (string, error) {
	if !IsScalarKey(tag) {
		if err := d.skip(tag, depth); err != nil {
			return "", err
		}

		return fmt.Sprintf("complex_key_%d", index), nil
	}

	switch tag {
	case TypeBool:
		v, err := d.ReadBool()
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(v), nil
	case TypeByte:
		b, err := d.ReadByte()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(int8(b)), 10), nil
	case TypeI16:
		v, err := d.ReadI16()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(v), 10), nil
	case TypeI32:
		v, err := d.ReadI32()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(int64(v), 10), nil
	case TypeI64:
		v, err := d.ReadI64()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil
	default:
		return d.ReadString()
	}
}

// skip consumes and discards one value of the given tag.
func (d *Decoder) skip(tag TypeTag, depth int) error {
	if depth > MaxDepth {
		return errors.Wrapf(ErrMaxDepth, "skip at offset %d", d.off)
	}

	switch tag {
	case TypeBool, TypeByte:
		return d.advance(1)
	case TypeI16:
		return d.advance(2)
	case TypeI32:
		return d.advance(4)
	case TypeI64, TypeDouble:
		return d.advance(8)
	case TypeString:
		size, err := d.ReadI32()
		if err != nil {
			return err
		}
		if size < 0 {
			return errors.Errorf("negative string length %d at offset %d", size, d.off-4)
		}
		return d.advance(int(size))
	case TypeStruct:
		for {
			rawTag, err := d.ReadByte()
			if err != nil {
				return err
			}
			if TypeTag(rawTag) == TypeStop {
				return nil
			}
			if err := d.advance(2); err != nil {
				return err
			}
			if err := d.skip(TypeTag(rawTag), depth+1); err != nil {
				return err
			}
		}
	case TypeList, TypeSet:
		rawElem, err := d.ReadByte()
		if err != nil {
			return err
		}
		count, err := d.ReadI32()
		if err != nil {
			return err
		}
		for i := int32(0); i < count; i++ {
			if err := d.skip(TypeTag(rawElem), depth+1); err != nil {
				return err
			}
		}
		return nil
	case TypeMap:
		rawKey, err := d.ReadByte()
		if err != nil {
			return err
		}
		rawVal, err := d.ReadByte()
		if err != nil {
			return err
		}
		count, err := d.ReadI32()
		if err != nil {
			return err
		}
		for i := int32(0); i < count; i++ {
			if err := d.skip(TypeTag(rawKey), depth+1); err != nil {
				return err
			}
			if err := d.skip(TypeTag(rawVal), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("cannot skip unrecognized type tag %d at offset %d", tag, d.off)
	}
}

func (d *Decoder) advance(n int) error {
	if err := d.require(n); err != nil {
		return err
	}

	d.off += n

	return nil
}
