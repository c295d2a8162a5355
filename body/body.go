// Package body implements the lazy, at-most-once-consumable byte stream
// shared by Request and Response (spec.md §3), plus the size-limiting
// reader the transport wraps a request body in (spec.md §4.2, §7).
//
// Grounded on shockwave/pkg/shockwave/http11/request.go's Body io.Reader
// field (body is a plain reader, not a pre-read buffer, to support
// streaming) and shockwave/pkg/shockwave/http11/chunked.go's style of
// wrapping a reader with a byte-accounting decorator.
package body

import (
	"errors"
	"io"
	"sync"

	"github.com/watt-toolkit/osrv/oerrors"
)

// ErrAlreadyConsumed is returned when a Body is read or drained more than
// once, per spec.md §3's "body consumable at most once" invariant.
var ErrAlreadyConsumed = errors.New("body: already consumed")

// Body is a lazy byte stream that can be read at most once.
type Body struct {
	mu       sync.Mutex
	reader   io.Reader
	consumed bool
}

// New wraps an io.Reader as a Body. A nil reader yields an empty Body
// (no bytes) that still reports unconsumed until it is read.
func New(r io.Reader) *Body {
	if r == nil {
		r = http_emptyReader{}
	}
	return &Body{reader: r}
}

type http_emptyReader struct{}

func (http_emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// Read implements io.Reader. The Body becomes consumed once the underlying
// reader returns an error (io.EOF included); every Read after that, like a
// Read after ReadAll, returns ErrAlreadyConsumed.
func (b *Body) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consumed {
		return 0, ErrAlreadyConsumed
	}
	n, err := b.reader.Read(p)
	if err != nil {
		b.consumed = true
	}
	return n, err
}

// ReadAll drains the Body into a single buffer. It fails if the Body was
// already consumed.
func (b *Body) ReadAll() ([]byte, error) {
	b.mu.Lock()
	if b.consumed {
		b.mu.Unlock()
		return nil, ErrAlreadyConsumed
	}
	reader := b.reader
	b.consumed = true
	b.mu.Unlock()

	return io.ReadAll(reader)
}

// Used reports whether the Body has been consumed.
func (b *Body) Used() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consumed
}

// LimitedReader wraps an io.Reader and fails with
// *oerrors.RequestLimitExceeded once cumulative bytes read exceed max.
// Grounded on http11's chunked-decoder byte-accounting pattern; here the
// accounting is generic over any underlying reader (plain or chunked).
type LimitedReader struct {
	R   io.Reader
	Max int64

	read int64
}

// NewLimitedReader wraps r with a maxBytes ceiling. max <= 0 disables the
// limit (cumulative reads pass through unmodified).
func NewLimitedReader(r io.Reader, max int64) *LimitedReader {
	return &LimitedReader{R: r, Max: max}
}

func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Max > 0 && l.read >= l.Max {
		return 0, oerrors.NewRequestLimitExceeded(l.Max, l.read)
	}
	// Pass the caller's buffer through untouched. Truncating it to
	// remaining+1 bytes would cap l.read at Max+1 the instant the limit is
	// first exceeded, so ActualBytes would report how much of the body we
	// happened to peek at rather than how much the client actually sent.
	n, err := l.R.Read(p)
	l.read += int64(n)
	if l.Max > 0 && l.read > l.Max {
		return n, oerrors.NewRequestLimitExceeded(l.Max, l.read)
	}
	return n, err
}

// BytesRead returns the cumulative byte count observed so far.
func (l *LimitedReader) BytesRead() int64 { return l.read }
