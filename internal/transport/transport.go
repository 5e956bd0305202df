// Package transport implements the request/response exchange of DNS messages
// over UDP, TCP, DNS-over-TLS, and DNS-over-HTTPS.
//
// All four transports satisfy the same contract: serialize the request
// packet, send it, receive and decode exactly one response, verify that the
// response's transaction ID and echoed question match the request, and
// enforce the caller's deadline. A transport performs no retries of its own;
// the truncation-driven UDP-to-TCP fallback lives in the lookup package.
//
// Connection lifetime is one exchange: UDP opens one socket per exchange and
// TCP/TLS open, use, and close one connection per exchange. That keeps
// lifetime reasoning trivial at the cost of per-query setup, an accepted
// tradeoff for a one-shot lookup tool.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/dugdns/dug/internal/dns"
)

// Kind identifies a DNS transport protocol.
type Kind string

const (
	KindUDP   Kind = "udp"   // Standard DNS over UDP (RFC 1035)
	KindTCP   Kind = "tcp"   // DNS over TCP with length-prefix framing (RFC 1035 §4.2.2)
	KindTLS   Kind = "tls"   // DNS over TLS (RFC 7858)
	KindHTTPS Kind = "https" // DNS over HTTPS (RFC 8484)
)

// DefaultPort returns the well-known port for the transport.
func (k Kind) DefaultPort() string {
	switch k {
	case KindTLS:
		return "853"
	case KindHTTPS:
		return "443"
	default:
		return "53"
	}
}

// ParseKind converts a transport name ("udp", "tcp", "tls", "https") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindUDP:
		return KindUDP, nil
	case KindTCP:
		return KindTCP, nil
	case KindTLS, "dot":
		return KindTLS, nil
	case KindHTTPS, "doh":
		return KindHTTPS, nil
	default:
		return "", fmt.Errorf("unknown transport %q", s)
	}
}

// Transport exchanges one DNS request for one DNS response.
type Transport interface {
	// Exchange serializes req, sends it to the configured server, and
	// returns the decoded, verified response. A truncated response is
	// returned as-is (not an error) so the caller can decide to retry
	// over TCP. The context's deadline, if earlier than the configured
	// timeout, wins.
	Exchange(ctx context.Context, req dns.Packet) (dns.Packet, error)
}

// Default timeouts per transport, matching the heavier setup cost of the
// encrypted variants.
const (
	DefaultUDPTimeout   = 3 * time.Second
	DefaultTCPTimeout   = 5 * time.Second
	DefaultTLSTimeout   = 5 * time.Second
	DefaultHTTPSTimeout = 5 * time.Second
)

// Options configures a transport.
type Options struct {
	// Server is the resolver address as HOST or HOST:PORT. A missing port
	// is filled with the transport's well-known port. Ignored by HTTPS
	// when Endpoint is set.
	Server string

	// Endpoint is the DoH URL (e.g. "https://1.1.1.1/dns-query").
	// Only used by KindHTTPS.
	Endpoint string

	// Timeout is the wall-clock deadline for the whole exchange.
	// Zero selects the transport's default.
	Timeout time.Duration

	// RecvSize is the minimum UDP receive buffer size. The effective
	// buffer is never smaller than 512 bytes or than the EDNS payload
	// size the request advertises. Only used by KindUDP.
	RecvSize int

	// TLSConfig overrides the TLS client configuration for KindTLS and
	// KindHTTPS (test servers use self-signed certificates).
	TLSConfig *tls.Config
}

// New creates the transport for the given kind.
func New(kind Kind, o Options) (Transport, error) {
	switch kind {
	case KindUDP:
		return NewUDP(o), nil
	case KindTCP:
		return NewTCP(o), nil
	case KindTLS:
		return NewTLS(o), nil
	case KindHTTPS:
		return NewHTTPS(o), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}

// serverAddr joins the configured server with the transport's default port
// when none is present.
func serverAddr(server string, kind Kind) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(strings.Trim(server, "[]"), kind.DefaultPort())
}

// deadlineFor resolves the effective wall-clock deadline: the configured
// timeout, shortened by the context's own deadline when that is earlier.
func deadlineFor(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	return deadline
}

// decodeAndVerify parses a response and checks it against the request.
//
// Verification order matters: parse failures surface as malformed-wire
// errors (dns.ErrDNSError), then a transaction ID or question mismatch is
// ErrMismatch. A response that is not marked QR=1, or that echoes a
// different question than the one sent, is treated the same as a wrong
// transaction ID -- something other than the answer to our query arrived.
func decodeAndVerify(req dns.Packet, respBytes []byte) (dns.Packet, error) {
	resp, err := dns.ParsePacket(respBytes)
	if err != nil {
		return dns.Packet{}, err
	}
	if resp.Header.ID != req.Header.ID {
		return dns.Packet{}, fmt.Errorf("%w: transaction ID %#04x, want %#04x", ErrMismatch, resp.Header.ID, req.Header.ID)
	}
	if !resp.Header.IsResponse() {
		return dns.Packet{}, fmt.Errorf("%w: QR flag not set in response", ErrMismatch)
	}
	if len(req.Questions) > 0 {
		if len(resp.Questions) == 0 {
			return dns.Packet{}, fmt.Errorf("%w: response has no question section", ErrMismatch)
		}
		if !resp.Questions[0].Equal(req.Questions[0]) {
			return dns.Packet{}, fmt.Errorf("%w: question %q, want %q", ErrMismatch, resp.Questions[0], req.Questions[0])
		}
	}
	return resp, nil
}
