// Package writer implements the encode path: a JSON document in, a base64
// Frugal/Thrift capture out. Unlike the decode path, encode failures are
// fatal: emitting bytes that do not match the document would be worse than
// failing loudly.
package writer

import (
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/batchcorp/frugalctl/frugal"
	"github.com/batchcorp/frugalctl/thrift"
	"github.com/batchcorp/frugalctl/types"
	"github.com/batchcorp/frugalctl/validate"
)

// Encode converts a JSON document back into a base64-encoded Frugal frame:
// frameSize | version=0 | headerLength | headerKVBlock | messageBytes.
// The compact flag selects the compact Thrift sub-format for the message
// body; the framing is unaffected.
func Encode(docJSON []byte, compact bool) ([]byte, error) {
	if err := validate.EncodeDocument(docJSON); err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(docJSON)

	headerBlock, err := frugal.EncodeHeaders(collectHeaders(doc.Get("headers")))
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode headers")
	}

	messageBytes, err := thrift.EncodeMessage(doc.Get("thrift"), compact)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode thrift message")
	}

	logrus.Debugf("encoded %d header byte(s), %d message byte(s)",
		len(headerBlock), len(messageBytes))

	framed := frugal.EncodeFrame(headerBlock, messageBytes)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(framed)))
	base64.StdEncoding.Encode(out, framed)

	return out, nil
}

// collectHeaders reads the headers object in document order.
func collectHeaders(headers gjson.Result) types.OrderedMap {
	out := types.OrderedMap{}

	headers.ForEach(func(k, v gjson.Result) bool {
		out.Set(k.String(), v.String())
		return true
	})

	return out
}
