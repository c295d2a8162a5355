package bridge

import (
	"bytes"
	"io"
	"net/url"
)

func parseURL(raw string) (*url.URL, error) {
	return url.Parse(raw)
}

func newByteReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
