package transport

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"time"

	"github.com/dugdns/dug/internal/dns"
)

// TLS implements DNS-over-TLS (RFC 7858): the TCP length-prefix framing
// carried inside a TLS session on port 853. Connection establishment and
// certificate/handshake failures are transport errors, never codec errors.
type TLS struct {
	server  string
	timeout time.Duration
	config  *tls.Config
}

// NewTLS creates a DNS-over-TLS transport. When no TLS configuration is
// given, the server name for certificate verification is derived from the
// server address.
func NewTLS(o Options) *TLS {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTLSTimeout
	}
	addr := serverAddr(o.Server, KindTLS)
	cfg := o.TLSConfig
	if cfg == nil {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = o.Server
		}
		cfg = &tls.Config{ServerName: host}
	}
	return &TLS{server: addr, timeout: timeout, config: cfg}
}

// Exchange implements Transport.
func (t *TLS) Exchange(ctx context.Context, req dns.Packet) (dns.Packet, error) {
	reqBytes, err := req.Marshal()
	if err != nil {
		return dns.Packet{}, err
	}

	deadline := deadlineFor(ctx, t.timeout)
	dialer := tls.Dialer{
		NetDialer: &net.Dialer{Deadline: deadline},
		Config:    t.config,
	}
	conn, err := dialer.DialContext(ctx, "tcp", t.server)
	if err != nil {
		// Covers TCP connect and TLS handshake failures alike.
		return dns.Packet{}, wrapNetErr("tls dial "+t.server, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(deadline)

	respBytes, err := exchangeFramed(conn, reqBytes)
	if err != nil {
		return dns.Packet{}, err
	}
	slog.Debug("tls exchange complete", "server", t.server, "bytes", len(respBytes))
	return decodeAndVerify(req, respBytes)
}
