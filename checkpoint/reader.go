package checkpoint

import (
	"fmt"
	"strings"
)

// pairReader walks label/value lines. A final line without a newline still
// counts; an empty line is a valid (empty) value.
type pairReader struct {
	file string
	data string
	line int
}

func newPairReader(file, data string) *pairReader {
	return &pairReader{file: file, data: data}
}

func (r *pairReader) next() (string, bool) {
	if r.data == "" {
		return "", false
	}
	var line string
	if i := strings.IndexByte(r.data, '\n'); i >= 0 {
		line, r.data = r.data[:i], r.data[i+1:]
	} else {
		line, r.data = r.data, ""
	}
	r.line++
	return strings.TrimRight(line, "\r\n"), true
}

func (r *pairReader) expect(label string) (string, error) {
	got, ok := r.next()
	if !ok {
		return "", fmt.Errorf("%w: %s: missing label %q", ErrTruncated, r.file, label)
	}
	if got != label {
		return "", &LabelError{File: r.file, Line: r.line, Expected: label, Got: got}
	}
	value, ok := r.next()
	if !ok {
		return "", fmt.Errorf("%w: %s: missing value for %q", ErrTruncated, r.file, label)
	}
	return value, nil
}

func (r *pairReader) rest() string {
	return strings.TrimSpace(r.data)
}
