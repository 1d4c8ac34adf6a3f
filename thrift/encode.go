package thrift

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// encodeStruct writes a struct body from a document "fields" array. Each
// field names its own wire type; container fields may also carry
// element_type/key_type/value_type, falling back to shape inference when
// they do not.
func encodeStruct(p Protocol, fields gjson.Result, depth int) error {
	if depth > MaxDepth {
		return errors.Wrap(ErrMaxDepth, "struct")
	}

	p.WriteStructBegin()

	for _, field := range fields.Array() {
		typeName := field.Get("field_type").String()

		tag, err := TypeFromName(typeName)
		if err != nil {
			return err
		}

		id := int16(field.Get("field_id").Int())

		p.WriteFieldBegin(tag, id)

		if err := encodeField(p, tag, field, depth+1); err != nil {
			return errors.Wrapf(err, "field %d", id)
		}
	}

	p.WriteFieldStop()
	p.WriteStructEnd()

	return nil
}

// encodeField writes one field value, honoring any explicit container type
// annotations on the field document.
func encodeField(p Protocol, tag TypeTag, field gjson.Result, depth int) error {
	value := field.Get("value")

	switch tag {
	case TypeList:
		return encodeList(p, false, field.Get("element_type").String(), value, depth)
	case TypeSet:
		return encodeList(p, true, field.Get("element_type").String(), value, depth)
	case TypeMap:
		return encodeMap(p, field.Get("key_type").String(), field.Get("value_type").String(), value, depth)
	default:
		return encodeValue(p, tag, value, depth)
	}
}

// encodeValue writes a bare value of the given tag. Nested containers carry
// no explicit type annotations at this level, so their element types are
// inferred from shape.
func encodeValue(p Protocol, tag TypeTag, value gjson.Result, depth int) error {
	if depth > MaxDepth {
		return errors.Wrap(ErrMaxDepth, "value")
	}

	switch tag {
	case TypeBool:
		p.WriteBool(value.Bool())
	case TypeByte:
		p.WriteI8(int8(value.Int()))
	case TypeI16:
		p.WriteI16(int16(value.Int()))
	case TypeI32:
		p.WriteI32(int32(value.Int()))
	case TypeI64:
		p.WriteI64(value.Int())
	case TypeDouble:
		p.WriteDouble(value.Float())
	case TypeString:
		if value.Type == gjson.Null {
			p.WriteString("")
		} else {
			p.WriteString(value.String())
		}
	case TypeStruct:
		fields := value.Get("fields")
		if !fields.Exists() {
			p.WriteStructBegin()
			p.WriteFieldStop()
			p.WriteStructEnd()
			return nil
		}
		return encodeStruct(p, fields, depth+1)
	case TypeList:
		return encodeList(p, false, "", value, depth)
	case TypeSet:
		return encodeList(p, true, "", value, depth)
	case TypeMap:
		return encodeMap(p, "", "", value, depth)
	default:
		return errors.Wrapf(ErrUnsupportedType, "tag %d", tag)
	}

	return nil
}

// encodeList writes a list or set body. elemName is the explicit element
// type from the document, or empty to infer from the items.
func encodeList(p Protocol, set bool, elemName string, value gjson.Result, depth int) error {
	if depth > MaxDepth {
		return errors.Wrap(ErrMaxDepth, "list")
	}

	items := value.Array()

	var elem TypeTag

	if elemName != "" {
		tag, err := TypeFromName(elemName)
		if err != nil {
			return errors.Wrap(err, "list element type")
		}
		elem = tag
	} else {
		elem = inferTag(items)
	}

	if set {
		p.WriteSetBegin(elem, len(items))
	} else {
		p.WriteListBegin(elem, len(items))
	}

	for _, item := range items {
		if err := encodeValue(p, elem, item, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// encodeMap writes a map body. Entries are accepted in either form a decode
// can produce or a user may write: a JSON object (document key order is
// preserved) or an array of {key, value} objects.
func encodeMap(p Protocol, keyName, valName string, value gjson.Result, depth int) error {
	if depth > MaxDepth {
		return errors.Wrap(ErrMaxDepth, "map")
	}

	var keys, vals []gjson.Result

	if value.IsArray() {
		for _, entry := range value.Array() {
			keys = append(keys, entry.Get("key"))
			vals = append(vals, entry.Get("value"))
		}
	} else if value.IsObject() {
		value.ForEach(func(k, v gjson.Result) bool {
			keys = append(keys, k)
			vals = append(vals, v)
			return true
		})
	}

	keyTag, err := mapSideTag(keyName, keys)
	if err != nil {
		return errors.Wrap(err, "map key type")
	}

	valTag, err := mapSideTag(valName, vals)
	if err != nil {
		return errors.Wrap(err, "map value type")
	}

	if !IsScalarKey(keyTag) {
		return errors.Wrapf(ErrUnsupportedType, "map key type '%s'", TypeName(keyTag))
	}

	p.WriteMapBegin(keyTag, valTag, len(keys))

	for i := range keys {
		if err := encodeValue(p, keyTag, keys[i], depth+1); err != nil {
			return err
		}

		if err := encodeValue(p, valTag, vals[i], depth+1); err != nil {
			return err
		}
	}

	return nil
}

func mapSideTag(name string, values []gjson.Result) (TypeTag, error) {
	if name != "" {
		return TypeFromName(name)
	}

	return inferTag(values), nil
}

// inferTag picks a wire type from the runtime shape of the values, applying
// a fixed precedence: all-boolean, then all-integer (i32), then all-floating
// (double), then string for scalars and struct for anything nested. Empty
// input defaults to string. The same input always infers the same type.
func inferTag(values []gjson.Result) TypeTag {
	if len(values) == 0 {
		return TypeString
	}

	allBool := true
	allInt := true
	allFloat := true
	allScalar := true

	for _, v := range values {
		switch v.Type {
		case gjson.True, gjson.False:
			allInt = false
			allFloat = false
		case gjson.Number:
			allBool = false
			if isIntegral(v) {
				allFloat = false
			} else {
				allInt = false
			}
		case gjson.String:
			allBool = false
			allInt = false
			allFloat = false
		default:
			allScalar = false
		}
	}

	switch {
	case !allScalar:
		return TypeStruct
	case allBool:
		return TypeBool
	case allInt:
		return TypeI32
	case allFloat:
		return TypeDouble
	default:
		return TypeString
	}
}

// isIntegral reports whether a JSON number was written without a fractional
// or exponent part.
func isIntegral(v gjson.Result) bool {
	return !strings.ContainsAny(v.Raw, ".eE")
}
