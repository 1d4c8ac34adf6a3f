// Package validate contains various validation functions
package validate

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/batchcorp/frugalctl/thrift"
)

var (
	ErrInvalidJSON   = errors.New("input is not valid JSON")
	ErrMissingThrift = errors.New("document has no 'thrift' object")
	ErrMissingMethod = errors.New("'thrift.method' is required")
	ErrBadHeaders    = errors.New("'headers' must be an object of string values")
	ErrBadFields     = errors.New("'fields' must be an array of field objects")
)

// EncodeDocument performs light validation of a document before encoding.
// Deep value checks (nested type names, container shapes) happen during the
// encode walk itself; this catches structural problems early with clearer
// messages.
func EncodeDocument(docJSON []byte) error {
	if !gjson.ValidBytes(docJSON) {
		return ErrInvalidJSON
	}

	doc := gjson.ParseBytes(docJSON)

	headers := doc.Get("headers")
	if headers.Exists() {
		if !headers.IsObject() {
			return ErrBadHeaders
		}

		var badKey string

		headers.ForEach(func(k, v gjson.Result) bool {
			if v.Type != gjson.String {
				badKey = k.String()
				return false
			}
			return true
		})

		if badKey != "" {
			return errors.Wrapf(ErrBadHeaders, "header '%s'", badKey)
		}
	}

	msg := doc.Get("thrift")
	if !msg.IsObject() {
		return ErrMissingThrift
	}

	if msg.Get("method").Type != gjson.String {
		return ErrMissingMethod
	}

	if _, err := thrift.KindFromName(msg.Get("type").String()); err != nil {
		return err
	}

	body := msg.Get("args")
	if !body.Exists() || body.Type == gjson.Null {
		body = msg.Get("reply")
	}

	if body.Exists() && body.Type != gjson.Null {
		if err := validateStruct(body); err != nil {
			return err
		}
	}

	return nil
}

func validateStruct(body gjson.Result) error {
	fields := body.Get("fields")
	if !fields.IsArray() {
		return ErrBadFields
	}

	for _, field := range fields.Array() {
		if !field.IsObject() {
			return ErrBadFields
		}

		if field.Get("field_id").Type != gjson.Number {
			return errors.Wrap(ErrBadFields, "missing numeric 'field_id'")
		}

		if _, err := thrift.TypeFromName(field.Get("field_type").String()); err != nil {
			return err
		}
	}

	return nil
}
