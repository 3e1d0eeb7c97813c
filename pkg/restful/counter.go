package restful

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kitir/kitir/pkg/util"
)

// Sequence hands out transaction numbers. Implementations must be safe for
// concurrent use and must never return the same number twice.
type Sequence interface {
	Next() uint64
}

// Counter is an atomic Sequence starting at a fixed value.
type Counter struct {
	n atomic.Uint64
}

// NewCounter returns a Counter whose first Next returns start.
func NewCounter(start uint64) *Counter {
	c := &Counter{}
	c.n.Store(start)
	return c
}

// Next returns the current value and advances the counter.
func (c *Counter) Next() uint64 {
	return c.n.Add(1) - 1
}

var processCounter = NewCounter(0)

// ProcessCounter returns the counter shared by every Client that was not
// given its own Sequence. Sharing it keeps ids unique across clients that
// log into the same directory.
func ProcessCounter() *Counter {
	return processCounter
}

// counterFormat zero-pads the sequence number to three digits.
const counterFormat = "%03d"

// FormatTransactionID joins the zero-padded sequence number with the
// non-empty parts, separated by '.'. Parts are made filename-safe.
func FormatTransactionID(n uint64, parts ...string) string {
	ids := make([]string, 0, len(parts)+1)
	ids = append(ids, fmt.Sprintf(counterFormat, n))
	for _, p := range parts {
		if p = util.SafeFileName(p); p != "" {
			ids = append(ids, p)
		}
	}
	return strings.Join(ids, ".")
}

// MakeTransactionID draws the next number from the client's sequence and
// formats it with parts.
func (c *Client) MakeTransactionID(parts ...string) string {
	return FormatTransactionID(c.seq.Next(), parts...)
}
