package frugal

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/batchcorp/frugalctl/types"
)

func TestLocate_StructuralEnvelope(t *testing.T) {
	g := NewGomegaWithT(t)

	headers := types.OrderedMap{}
	headers.Set("user-agent", "test")

	block, err := EncodeHeaders(headers)
	g.Expect(err).ToNot(HaveOccurred())

	message := []byte{0x80, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00}
	framed := EncodeFrame(block, message)

	headerBytes, messageBytes, err := NewLocator().Locate(framed)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(headerBytes).To(HaveLen(9 + len(block)))
	g.Expect(messageBytes).To(Equal(message))
}

func TestLocate_MarkerFallback(t *testing.T) {
	g := NewGomegaWithT(t)

	// No structural envelope; binary protocol marker at offset 3
	data := []byte{0xaa, 0xbb, 0xcc, 0x80, 0x01, 0x00, 0x01, 0x00}

	headerBytes, messageBytes, err := NewLocator().Locate(data)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(headerBytes).To(Equal([]byte{0xaa, 0xbb, 0xcc}))
	g.Expect(messageBytes[0]).To(Equal(byte(0x80)))
}

func TestLocate_EarliestMarkerWins(t *testing.T) {
	g := NewGomegaWithT(t)

	// Compact variant marker at offset 2, binary marker at offset 5.
	// The binary marker is configured first but the earlier offset wins.
	data := []byte{0xaa, 0xbb, 0x82, 0x21, 0xcc, 0x80, 0x01, 0x00}

	headerBytes, _, err := NewLocator().Locate(data)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(headerBytes).To(HaveLen(2))
}

func TestLocate_TieBrokenByPriority(t *testing.T) {
	g := NewGomegaWithT(t)

	// Both configured markers match at offset 1; the first-listed wins.
	// Offsets are equal because the second marker is a prefix extension.
	l := NewLocator(
		[]byte{0x80, 0x01},
		[]byte{0x80, 0x01, 0x00, 0x02},
	)

	data := []byte{0xff, 0x80, 0x01, 0x00, 0x02, 0x00}

	headerBytes, messageBytes, err := l.Locate(data)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(headerBytes).To(Equal([]byte{0xff}))
	g.Expect(messageBytes).To(HaveLen(5))
}

func TestLocate_ByteScanFallback(t *testing.T) {
	g := NewGomegaWithT(t)

	// Configured markers never match; the two-byte window scan still
	// recognizes the compact protocol prefix.
	l := NewLocator([]byte{0xde, 0xad, 0xbe, 0xef})

	data := []byte{0x00, 0x82, 0x21, 0x00, 0x02}

	headerBytes, _, err := l.Locate(data)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(headerBytes).To(HaveLen(1))
}

func TestLocate_NothingFound(t *testing.T) {
	g := NewGomegaWithT(t)

	_, _, err := NewLocator().Locate([]byte{0x01, 0x02, 0x03})

	g.Expect(err).To(MatchError(ErrFrameNotFound))
}

func TestLocate_RejectsInconsistentStructural(t *testing.T) {
	g := NewGomegaWithT(t)

	// Frame size larger than the buffer: structural parse must be
	// rejected and the marker scan used instead.
	data := []byte{
		0xff, 0xff, 0xff, 0xff, // impossible frame size
		0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00,
		0x80, 0x01, 0x00, 0x01,
	}

	headerBytes, _, err := NewLocator().Locate(data)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(headerBytes).To(HaveLen(10))
}
