package util

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// ReadInput reads the capture or document to process. "-" means stdin.
func ReadInput(filename string) ([]byte, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "unable to read stdin")
		}

		return data, nil
	}

	if !FileExists(filename) {
		return nil, errors.Errorf("input file '%s' does not exist or is not a regular file", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read file '%s'", filename)
	}

	return data, nil
}

// WriteOutput writes result bytes to the given file, or to stdout when no
// file is given. Stdout output gets a trailing newline; file output is the
// exact result bytes.
func WriteOutput(filename string, data []byte) error {
	if filename == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.Wrapf(err, "unable to write file '%s'", filename)
	}

	return nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return !info.IsDir()
}
