package versionstore

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Charset decodes raw file bytes into text.
type Charset struct {
	name     string
	encoding encoding.Encoding
}

// NewCharset looks up a WHATWG encoding label such as "utf-8" or "euc-kr".
// An empty label means utf-8.
func NewCharset(label string) (*Charset, error) {
	if label == "" {
		label = "utf-8"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	return &Charset{name: name, encoding: enc}, nil
}

// Decode converts bytes to text and normalises CRLF line endings to LF.
func (c *Charset) Decode(data []byte) (string, error) {
	decoded, err := c.encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding with charset %s: %w", c.name, err)
	}
	return strings.ReplaceAll(string(decoded), "\r\n", "\n"), nil
}

func (c *Charset) String() string {
	return c.name
}
