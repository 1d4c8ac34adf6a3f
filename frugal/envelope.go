// Package frugal handles the outer Frugal framing of a capture: a
// length-prefixed envelope carrying a key/value header block ahead of the
// Thrift message, plus the heuristics for locating that boundary in raw
// bytes.
package frugal

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/batchcorp/frugalctl/types"
)

// metadataSize is the fixed envelope prefix: frame size (4), version (1),
// header length (4).
const metadataSize = 9

var (
	// ErrHeaderTruncated is returned when a header length field would run
	// past the end of the buffer.
	ErrHeaderTruncated = errors.New("header block truncated")

	// ErrInvalidUTF8 is returned when a header key or value cannot be
	// encoded as UTF-8.
	ErrInvalidUTF8 = errors.New("header key/value is not valid UTF-8")
)

// Envelope is a decoded Frugal frame prefix: the fixed metadata plus the
// ordered header key/value block. Invariant for a well-formed frame:
// FrameSize == 5 + HeaderLength + len(messageBytes).
type Envelope struct {
	FrameSize    uint32
	Version      uint8
	HeaderLength uint32
	Headers      types.OrderedMap
}

// DecodeEnvelope parses the envelope metadata and header block from
// headerBytes (the capture up to the message boundary). Header keys repeat:
// last write wins, first position kept. An empty or too-short buffer is not
// an error; marker-located captures may carry no envelope at all, in which
// case the metadata and headers are empty.
func DecodeEnvelope(headerBytes []byte) (*Envelope, error) {
	env := &Envelope{
		Headers: types.OrderedMap{},
	}

	if len(headerBytes) < metadataSize {
		return env, nil
	}

	env.FrameSize = binary.BigEndian.Uint32(headerBytes[0:4])
	env.Version = headerBytes[4]
	env.HeaderLength = binary.BigEndian.Uint32(headerBytes[5:9])

	block := headerBytes[metadataSize:]

	// The header length counts the key/value block only, without the
	// metadata prefix.
	if uint64(env.HeaderLength) > uint64(len(block)) {
		return nil, errors.Wrapf(ErrHeaderTruncated,
			"header length %d exceeds %d available byte(s)", env.HeaderLength, len(block))
	}

	offset := uint32(0)

	for offset < env.HeaderLength {
		key, n, err := readLengthPrefixed(block[offset:env.HeaderLength])
		if err != nil {
			return nil, errors.Wrap(err, "header key")
		}
		offset += n

		value, n, err := readLengthPrefixed(block[offset:env.HeaderLength])
		if err != nil {
			return nil, errors.Wrap(err, "header value")
		}
		offset += n

		env.Headers.Set(key, value)
	}

	return env, nil
}

// readLengthPrefixed reads a 4-byte big-endian length and that many bytes of
// UTF-8, returning the string and total bytes consumed.
func readLengthPrefixed(buf []byte) (string, uint32, error) {
	if len(buf) < 4 {
		return "", 0, errors.Wrapf(ErrHeaderTruncated, "need 4 byte(s), have %d", len(buf))
	}

	size := binary.BigEndian.Uint32(buf[0:4])

	if uint64(4+size) > uint64(len(buf)) {
		return "", 0, errors.Wrapf(ErrHeaderTruncated, "need %d byte(s), have %d", size, len(buf)-4)
	}

	return string(buf[4 : 4+size]), 4 + size, nil
}

// EncodeHeaders encodes the header key/value block: for each pair, in the
// order supplied, a 4-byte big-endian key length, the key, a 4-byte
// big-endian value length, the value.
func EncodeHeaders(headers types.OrderedMap) ([]byte, error) {
	out := make([]byte, 0)

	for _, kv := range headers {
		value, ok := kv.Value.(string)
		if !ok {
			if kv.Value == nil {
				value = ""
			} else {
				return nil, errors.Errorf("header '%s' value is not a string", kv.Key)
			}
		}

		if !utf8.ValidString(kv.Key) || !utf8.ValidString(value) {
			return nil, errors.Wrapf(ErrInvalidUTF8, "header '%s'", kv.Key)
		}

		out = appendLengthPrefixed(out, kv.Key)
		out = appendLengthPrefixed(out, value)
	}

	return out, nil
}

// EncodeFrame assembles the full capture: frame size, version 0, header
// length, header block, message bytes. The frame size counts everything
// after itself.
func EncodeFrame(headerBlock, messageBytes []byte) []byte {
	frameSize := uint32(len(headerBlock) + len(messageBytes) + 5)

	out := make([]byte, 0, 4+metadataSize+len(headerBlock)+len(messageBytes))
	out = binary.BigEndian.AppendUint32(out, frameSize)
	out = append(out, 0)
	out = binary.BigEndian.AppendUint32(out, uint32(len(headerBlock)))
	out = append(out, headerBlock...)
	out = append(out, messageBytes...)

	return out
}

func appendLengthPrefixed(out []byte, s string) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(s)))
	return append(out, s...)
}
