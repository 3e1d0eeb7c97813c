package restful

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/kitir/kitir/pkg/metrics"
)

// abortedMessages are fragments of error text that mean the peer dropped
// the connection mid-exchange.
var abortedMessages = []string{
	"connection aborted",
	"connection reset",
	"broken pipe",
	"server closed idle connection",
	"transport connection broken",
	"EOF",
}

// IsTimeout reports whether err is a timeout of the call.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsConnectionAborted reports whether err means the connection was
// dropped by the peer after it was established.
func IsConnectionAborted(err error) bool {
	if err == nil || IsTimeout(err) {
		return false
	}
	for _, target := range []error{syscall.ECONNRESET, syscall.ECONNABORTED, syscall.EPIPE, io.ErrUnexpectedEOF, io.EOF} {
		if errors.Is(err, target) {
			return true
		}
	}
	msg := err.Error()
	for _, m := range abortedMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func classifyTransportError(err error) string {
	switch {
	case IsTimeout(err):
		return metrics.KindTimeout
	case IsConnectionAborted(err):
		return metrics.KindAborted
	default:
		return metrics.KindOther
	}
}
