package core

// reader.go turns an uploaded file into the text the lead parser consumes.
// The bytes pass through a size guard and a UTF-8 decoder that drops a
// leading byte order mark and replaces invalid sequences with U+FFFD, so
// exports saved by spreadsheet tools on Windows read the same as clean ones.

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned when an upload holds only whitespace.
	ErrEmptyFile = errors.New("empty file")
)

// countingReader tracks how many raw bytes were consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// NewUploadReader wraps r with BOM removal and UTF-8 sanitizing.
func NewUploadReader(r io.Reader) io.Reader {
	return unicode.UTF8BOM.NewDecoder().Reader(r)
}

// ReadUpload reads a whole upload into memory. maxSize bounds the raw byte
// count; zero or less disables the check. A failing reader yields a single
// wrapped error and no content.
func ReadUpload(r io.Reader, maxSize int64) (string, error) {
	counter := &countingReader{r: r}

	var src io.Reader = counter
	if maxSize > 0 {
		src = io.LimitReader(counter, maxSize+1)
	}

	data, err := io.ReadAll(NewUploadReader(src))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if maxSize > 0 && counter.n > maxSize {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrEmptyFile
	}

	return string(data), nil
}
