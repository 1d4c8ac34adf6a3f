// Package reader implements the decode path: a base64 capture in, a JSON
// document out. Decode never fails upward; anything unrecoverable becomes a
// structured error document so output stays machine-readable.
package reader

import (
	"encoding/base64"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/batchcorp/frugalctl/frugal"
	"github.com/batchcorp/frugalctl/thrift"
	"github.com/batchcorp/frugalctl/types"
)

// Decode converts a base64-encoded Frugal/Thrift capture into its JSON
// document. The returned bytes are always a valid document; decoding
// failures are reported inside it, never as a Go error. The error return
// covers only a failure to marshal the document itself.
func Decode(data []byte) ([]byte, error) {
	return MarshalDocument(DecodeToDocument(data))
}

// MarshalDocument renders a document as indented JSON.
func MarshalDocument(doc *types.Document) ([]byte, error) {
	out, err := jsoniter.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal document")
	}

	return out, nil
}

// DecodeToDocument runs the full decode pipeline: base64, frame location,
// envelope, message.
func DecodeToDocument(data []byte) *types.Document {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		logrus.Debugf("base64 decode failed: %s", err)
		return types.ErrorDocument(errors.Wrap(err, "unable to decode base64 input"))
	}

	headerBytes, messageBytes, err := frugal.NewLocator().Locate(raw)
	if err != nil {
		logrus.Debugf("frame location failed: %s", err)
		return types.ErrorDocument(err)
	}

	logrus.Debugf("located frame boundary: %d header byte(s), %d message byte(s)",
		len(headerBytes), len(messageBytes))

	env, err := frugal.DecodeEnvelope(headerBytes)
	if err != nil {
		logrus.Debugf("envelope decode failed: %s", err)
		return types.ErrorDocument(err)
	}

	doc := &types.Document{
		Metadata: &types.Metadata{
			MessageLength: env.FrameSize,
			Version:       env.Version,
			HeaderLength:  env.HeaderLength,
		},
		Headers: env.Headers,
	}

	msg, err := thrift.DecodeMessage(messageBytes)
	if err != nil {
		logrus.Debugf("message decode failed: %s", err)

		msg = types.UnknownMessage()
		msg.Error = "Failed to parse Thrift message"
		doc.ThriftParseError = true
	}

	doc.Thrift = msg

	return doc
}
