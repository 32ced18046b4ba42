package flagvalue

import (
	"flag"
	"io"
	"os"

	"braces.dev/errtrace"
)

// FileSwitch is a flag that works both as a boolean ("-debug")
// and as a file path ("-debug=build.log").
//
// Passed without a value, it records "-",
// meaning the caller's fallback writer.
type FileSwitch string

var _ flag.Getter = (*FileSwitch)(nil)

// Get returns the recorded path, "-", or "".
func (fs *FileSwitch) Get() any { return string(*fs) }

func (fs *FileSwitch) String() string { return string(*fs) }

// IsBoolFlag allows the flag to be passed without a value.
func (*FileSwitch) IsBoolFlag() bool { return true }

// Set records the flag's value.
func (fs *FileSwitch) Set(v string) error {
	switch v {
	case "true":
		v = "-"
	case "false":
		v = ""
	}
	*fs = FileSwitch(v)
	return nil
}

// Enabled reports whether the flag was passed.
func (fs *FileSwitch) Enabled() bool { return *fs != "" }

// Open returns where output for this flag should go:
// io.Discard if the flag wasn't passed,
// fallback if it was passed without a value,
// or a newly created file otherwise.
//
// The caller must close the returned writer.
// Closing io.Discard or fallback is a no-op.
func (fs *FileSwitch) Open(fallback io.Writer) (io.WriteCloser, error) {
	switch *fs {
	case "":
		return nopCloser{io.Discard}, nil
	case "-":
		return nopCloser{fallback}, nil
	}

	f, err := os.Create(string(*fs))
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
