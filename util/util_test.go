package util

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
)

func TestWriteOutputToFile(t *testing.T) {
	g := NewGomegaWithT(t)

	path := filepath.Join(t.TempDir(), "out.json")

	err := WriteOutput(path, []byte("hello"))
	g.Expect(err).ToNot(HaveOccurred())

	data, err := os.ReadFile(path)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(data).To(Equal([]byte("hello")))
}

func TestReadInputFile(t *testing.T) {
	g := NewGomegaWithT(t)

	path := filepath.Join(t.TempDir(), "in.b64")

	g.Expect(os.WriteFile(path, []byte("payload"), 0644)).To(Succeed())

	data, err := ReadInput(path)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(data).To(Equal([]byte("payload")))
}

func TestReadInputMissingFile(t *testing.T) {
	g := NewGomegaWithT(t)

	_, err := ReadInput(filepath.Join(t.TempDir(), "nope"))

	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("does not exist"))
}

func TestReadInputDirectory(t *testing.T) {
	g := NewGomegaWithT(t)

	_, err := ReadInput(t.TempDir())

	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("not a regular file"))
}

func TestFileExists(t *testing.T) {
	g := NewGomegaWithT(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	g.Expect(FileExists(path)).To(BeFalse())
	g.Expect(os.WriteFile(path, nil, 0644)).To(Succeed())
	g.Expect(FileExists(path)).To(BeTrue())
	g.Expect(FileExists(dir)).To(BeFalse())
}
