package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/dugdns/dug/internal/dns"
	"github.com/dugdns/dug/internal/helpers"
)

// TCP sends queries over a fresh TCP connection with 2-byte length-prefix
// framing (RFC 1035 Section 4.2.2):
//
//	+--+--+
//	|Length| 2 bytes, big-endian message length
//	+--+--+
//	|      |
//	| DNS  | Variable length DNS message
//	|      |
//	+------+
//
// One connection is opened, used for exactly one exchange, and closed.
type TCP struct {
	server  string
	timeout time.Duration
}

// NewTCP creates a TCP transport.
func NewTCP(o Options) *TCP {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTCPTimeout
	}
	return &TCP{server: serverAddr(o.Server, KindTCP), timeout: timeout}
}

// Exchange implements Transport.
func (t *TCP) Exchange(ctx context.Context, req dns.Packet) (dns.Packet, error) {
	reqBytes, err := req.Marshal()
	if err != nil {
		return dns.Packet{}, err
	}

	deadline := deadlineFor(ctx, t.timeout)
	d := net.Dialer{Deadline: deadline}
	conn, err := d.DialContext(ctx, "tcp", t.server)
	if err != nil {
		return dns.Packet{}, wrapNetErr("dial "+t.server, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(deadline)

	respBytes, err := exchangeFramed(conn, reqBytes)
	if err != nil {
		return dns.Packet{}, err
	}
	slog.Debug("tcp exchange complete", "server", t.server, "bytes", len(respBytes))
	return decodeAndVerify(req, respBytes)
}

// exchangeFramed writes one length-prefixed message and reads one back.
// io.ReadFull loops over partial reads until the full frame is transferred
// or the connection deadline fires; net.Conn.Write gives the same guarantee
// for the outbound direction.
func exchangeFramed(conn net.Conn, req []byte) ([]byte, error) {
	// Use two writes to avoid allocation from append(prefix, req...)
	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], helpers.ClampIntToUint16(len(req)))
	if _, err := conn.Write(prefix[:]); err != nil {
		return nil, wrapNetErr("send length prefix", err)
	}
	if _, err := conn.Write(req); err != nil {
		return nil, wrapNetErr("send", err)
	}

	if _, err := io.ReadFull(conn, prefix[:]); err != nil {
		return nil, wrapNetErr("receive length prefix", err)
	}
	respLen := int(binary.BigEndian.Uint16(prefix[:]))
	if respLen < dns.HeaderSize {
		return nil, fmt.Errorf("%w: framed response length %d below header size", ErrTransport, respLen)
	}

	resp := make([]byte, respLen)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return nil, wrapNetErr("receive", err)
	}
	return resp, nil
}
