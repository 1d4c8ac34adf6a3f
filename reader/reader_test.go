package reader

import (
	"encoding/base64"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/batchcorp/frugalctl/frugal"
	"github.com/batchcorp/frugalctl/thrift"
	"github.com/batchcorp/frugalctl/types"
)

// buildCapture assembles a base64 Frugal frame with one header and a call
// message containing a single i32 field.
func buildCapture(t *testing.T) []byte {
	t.Helper()

	headers := types.OrderedMap{}
	headers.Set("user-agent", "test")

	block, err := frugal.EncodeHeaders(headers)
	if err != nil {
		t.Fatalf("unable to encode headers: %s", err.Error())
	}

	p := thrift.NewBinaryProtocol()
	p.WriteMessageBegin("getPeople", thrift.KindCall, 7)
	p.WriteStructBegin()
	p.WriteFieldBegin(thrift.TypeI32, 1)
	p.WriteI32(42)
	p.WriteFieldStop()
	p.WriteStructEnd()

	framed := frugal.EncodeFrame(block, p.Bytes())

	return []byte(base64.StdEncoding.EncodeToString(framed))
}

func TestDecode_FullCapture(t *testing.T) {
	g := NewGomegaWithT(t)

	out, err := Decode(buildCapture(t))
	g.Expect(err).ToNot(HaveOccurred())

	doc := gjson.ParseBytes(out)

	g.Expect(doc.Get("metadata.version").Int()).To(Equal(int64(0)))
	g.Expect(doc.Get("metadata.header_length").Int()).To(BeNumerically(">", 0))
	g.Expect(doc.Get("headers.user-agent").String()).To(Equal("test"))
	g.Expect(doc.Get("thrift.method").String()).To(Equal("getPeople"))
	g.Expect(doc.Get("thrift.type").String()).To(Equal("call"))
	g.Expect(doc.Get("thrift.seqid").Int()).To(Equal(int64(7)))
	g.Expect(doc.Get("thrift.args.fields.0.field_id").Int()).To(Equal(int64(1)))
	g.Expect(doc.Get("thrift.args.fields.0.field_type").String()).To(Equal("i32"))
	g.Expect(doc.Get("thrift.args.fields.0.value").Int()).To(Equal(int64(42)))
}

func TestDecode_EnvelopeInvariant(t *testing.T) {
	g := NewGomegaWithT(t)

	raw, err := base64.StdEncoding.DecodeString(string(buildCapture(t)))
	g.Expect(err).ToNot(HaveOccurred())

	headerBytes, messageBytes, err := frugal.NewLocator().Locate(raw)
	g.Expect(err).ToNot(HaveOccurred())

	env, err := frugal.DecodeEnvelope(headerBytes)
	g.Expect(err).ToNot(HaveOccurred())

	g.Expect(env.FrameSize).To(Equal(uint32(5 + int(env.HeaderLength) + len(messageBytes))))
}

func TestDecode_GarbageReturnsErrorDocument(t *testing.T) {
	g := NewGomegaWithT(t)

	out, err := Decode([]byte("not base64 at all!!!"))
	g.Expect(err).ToNot(HaveOccurred())

	doc := gjson.ParseBytes(out)

	g.Expect(doc.Get("error").String()).To(ContainSubstring("Failed to decode message"))
	g.Expect(doc.Get("thrift.method").String()).To(Equal("unknown"))
	g.Expect(doc.Get("thrift.type").String()).To(Equal("unknown"))
	g.Expect(doc.Get("thrift.seqid").Int()).To(Equal(int64(0)))
}

func TestDecode_NoMarkerReturnsErrorDocument(t *testing.T) {
	g := NewGomegaWithT(t)

	payload := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02, 0x03})

	out, err := Decode([]byte(payload))
	g.Expect(err).ToNot(HaveOccurred())

	doc := gjson.ParseBytes(out)

	g.Expect(doc.Get("error").Exists()).To(BeTrue())
	g.Expect(doc.Get("thrift.method").String()).To(Equal("unknown"))
}

func TestDecode_BareMessageNoEnvelope(t *testing.T) {
	g := NewGomegaWithT(t)

	p := thrift.NewBinaryProtocol()
	p.WriteMessageBegin("ping", thrift.KindOneway, 1)
	p.WriteStructBegin()
	p.WriteFieldStop()
	p.WriteStructEnd()

	payload := base64.StdEncoding.EncodeToString(p.Bytes())

	out, err := Decode([]byte(payload))
	g.Expect(err).ToNot(HaveOccurred())

	doc := gjson.ParseBytes(out)

	g.Expect(doc.Get("error").Exists()).To(BeFalse())
	g.Expect(doc.Get("headers").String()).To(Equal("{}"))
	g.Expect(doc.Get("thrift.method").String()).To(Equal("ping"))
	g.Expect(doc.Get("thrift.type").String()).To(Equal("oneway"))
}

func TestDecode_TruncatedMessageFlagsParseError(t *testing.T) {
	g := NewGomegaWithT(t)

	// Valid strict header start, then nothing
	payload := base64.StdEncoding.EncodeToString([]byte{0x80, 0x01, 0x00, 0x01, 0x00})

	out, err := Decode([]byte(payload))
	g.Expect(err).ToNot(HaveOccurred())

	doc := gjson.ParseBytes(out)

	g.Expect(doc.Get("thrift_parse_error").Bool()).To(BeTrue())
	g.Expect(doc.Get("thrift.method").String()).To(Equal("unknown"))
	g.Expect(doc.Get("thrift.error").String()).To(ContainSubstring("Failed to parse"))
}
