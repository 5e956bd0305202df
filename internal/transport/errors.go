package transport

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTransport is the sentinel error for network-level failures:
	// connection refused/reset, TLS handshake errors, HTTP-layer errors.
	// These are environmental conditions a caller may retry or report;
	// they are never conflated with malformed wire data (dns.ErrDNSError).
	ErrTransport = errors.New("dns transport failure")

	// ErrTimeout wraps ErrTransport for deadline expiry, so callers can
	// match either the specific or the general condition with errors.Is.
	ErrTimeout = fmt.Errorf("%w: i/o timeout", ErrTransport)

	// ErrMismatch is the sentinel error for protocol-mismatch responses:
	// a transaction ID or echoed question that does not match the request.
	// On connectionless transports this guards against off-path spoofing
	// and stale or duplicate responses.
	ErrMismatch = errors.New("dns response mismatch")
)

// wrapNetErr classifies a network error as timeout or generic transport
// failure, preserving the original message as context.
func wrapNetErr(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
}
