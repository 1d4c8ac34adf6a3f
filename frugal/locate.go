package frugal

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
)

// ErrFrameNotFound is returned when neither a structural envelope nor any
// protocol marker can be located in a capture.
var ErrFrameNotFound = errors.New("no thrift or frugal marker found in the message")

// Protocol prefixes seen at the start of a Thrift message.
var (
	prefixBinary  = []byte{0x80, 0x01}
	prefixCompact = []byte{0x82, 0x21}
)

// DefaultMarkers is the ordered marker list used when the caller does not
// supply one. Order matters: when two markers match at the same offset, the
// earlier entry wins. Bare protocol prefixes come first, then prefixes
// extended with a message-kind byte pair (call/reply/exception/oneway).
var DefaultMarkers = [][]byte{
	{0x80, 0x01},
	{0x82, 0x21},
	{0x80, 0x01, 0x00, 0x01},
	{0x80, 0x01, 0x00, 0x02},
	{0x80, 0x01, 0x00, 0x03},
	{0x80, 0x01, 0x00, 0x04},
}

// Locator splits raw captures into header and message bytes.
type Locator struct {
	markers [][]byte
}

// NewLocator returns a Locator using the given ordered marker list, or
// DefaultMarkers when markers is empty.
func NewLocator(markers ...[]byte) *Locator {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	return &Locator{markers: markers}
}

// Locate finds the boundary between the Frugal header and the Thrift
// message in data and returns the two halves.
//
// The structural parse is tried first: when the leading bytes are internally
// consistent as envelope metadata, the boundary is exactly 9+headerLength.
// Otherwise the configured markers are scanned, earliest match wins, ties
// broken by marker priority; as a last resort every two-byte window is
// checked for a known protocol prefix. The ordering is a heuristic: on
// ambiguous input the structural parse is preferred but not guaranteed
// correct.
func (l *Locator) Locate(data []byte) (headerBytes, messageBytes []byte, err error) {
	if split, ok := l.structuralSplit(data); ok {
		return data[:split], data[split:], nil
	}

	if split, ok := l.markerSplit(data); ok {
		return data[:split], data[split:], nil
	}

	if split, ok := l.prefixScanSplit(data); ok {
		return data[:split], data[split:], nil
	}

	return nil, nil, ErrFrameNotFound
}

// structuralSplit interprets the leading bytes as envelope metadata and
// accepts the interpretation only when the sizes are internally consistent.
func (l *Locator) structuralSplit(data []byte) (int, bool) {
	if len(data) <= metadataSize {
		return 0, false
	}

	frameSize := binary.BigEndian.Uint32(data[0:4])
	version := data[4]
	headerLength := binary.BigEndian.Uint32(data[5:9])

	if frameSize == 0 || uint64(frameSize) >= uint64(len(data)) {
		return 0, false
	}

	if version > 1 {
		return 0, false
	}

	if headerLength >= frameSize {
		return 0, false
	}

	split := metadataSize + int(headerLength)
	if split > len(data) {
		return 0, false
	}

	return split, true
}

type markerHit struct {
	offset   int
	priority int
}

// markerSplit finds the first occurrence of each configured marker and
// selects the earliest; equal offsets fall back to list order.
func (l *Locator) markerSplit(data []byte) (int, bool) {
	hits := make([]markerHit, 0, len(l.markers))

	for i, marker := range l.markers {
		if pos := bytes.Index(data, marker); pos != -1 {
			hits = append(hits, markerHit{offset: pos, priority: i})
		}
	}

	if len(hits) == 0 {
		return 0, false
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].offset != hits[j].offset {
			return hits[i].offset < hits[j].offset
		}
		return hits[i].priority < hits[j].priority
	})

	return hits[0].offset, true
}

// prefixScanSplit checks every two-byte window for a recognized protocol
// prefix. Only used when no configured marker matched.
func (l *Locator) prefixScanSplit(data []byte) (int, bool) {
	for i := 0; i+2 <= len(data); i++ {
		window := data[i : i+2]

		if bytes.Equal(window, prefixBinary) || bytes.Equal(window, prefixCompact) {
			return i, true
		}
	}

	return 0, false
}
