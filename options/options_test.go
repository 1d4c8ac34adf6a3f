package options

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestHandleDecodeFlags(t *testing.T) {
	g := NewGomegaWithT(t)

	args := []string{
		"decode", "capture.b64",
		"--output", "out.json",
		"--pretty",
		"--verbose",
		"--debug",
	}

	cmd, opts, err := Handle(args)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(cmd).To(Equal("decode <filename>"))
	g.Expect(opts.Debug).To(BeTrue())
	g.Expect(opts.Decode.Filename).To(Equal("capture.b64"))
	g.Expect(opts.Decode.Output).To(Equal("out.json"))
	g.Expect(opts.Decode.Pretty).To(BeTrue())
	g.Expect(opts.Decode.Verbose).To(BeTrue())
}

func TestHandleEncodeFlags(t *testing.T) {
	g := NewGomegaWithT(t)

	args := []string{
		"encode", "doc.json",
		"-o", "capture.b64",
		"--compact",
	}

	cmd, opts, err := Handle(args)

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(cmd).To(Equal("encode <filename>"))
	g.Expect(opts.Encode.Filename).To(Equal("doc.json"))
	g.Expect(opts.Encode.Output).To(Equal("capture.b64"))
	g.Expect(opts.Encode.Compact).To(BeTrue())
}

func TestHandleDecodeDefaults(t *testing.T) {
	g := NewGomegaWithT(t)

	cmd, opts, err := Handle([]string{"decode", "-"})

	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(cmd).To(Equal("decode <filename>"))
	g.Expect(opts.Decode.Filename).To(Equal("-"))
	g.Expect(opts.Decode.Output).To(BeEmpty())
	g.Expect(opts.Decode.Pretty).To(BeFalse())
	g.Expect(opts.Encode.Compact).To(BeFalse())
}

func TestHandleMissingFilename(t *testing.T) {
	g := NewGomegaWithT(t)

	_, _, err := Handle([]string{"decode"})

	g.Expect(err).To(HaveOccurred())
}

func TestHandleUnknownCommand(t *testing.T) {
	g := NewGomegaWithT(t)

	_, _, err := Handle([]string{"transmogrify", "x"})

	g.Expect(err).To(HaveOccurred())
}
