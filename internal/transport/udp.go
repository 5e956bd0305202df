package transport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/dugdns/dug/internal/dns"
	"github.com/dugdns/dug/internal/helpers"
	"github.com/dugdns/dug/internal/pool"
)

// UDP sends each query as a single datagram and reads a single datagram back
// (RFC 1035 Section 4.2.1). One socket is opened per exchange and closed
// before Exchange returns, on success and failure paths alike.
//
// A response with the TC flag set is returned as-is; deciding to re-issue
// the query over TCP is the lookup orchestrator's job.
type UDP struct {
	server  string
	timeout time.Duration
	buffers *pool.Buffers
}

// NewUDP creates a UDP transport.
func NewUDP(o Options) *UDP {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultUDPTimeout
	}
	recvSize := helpers.ClampInt(o.RecvSize, dns.DefaultUDPPayloadSize, dns.MaxIncomingDNSMessageSize)
	return &UDP{
		server:  serverAddr(o.Server, KindUDP),
		timeout: timeout,
		buffers: pool.NewBuffers(recvSize),
	}
}

// Exchange implements Transport.
func (t *UDP) Exchange(ctx context.Context, req dns.Packet) (dns.Packet, error) {
	reqBytes, err := req.Marshal()
	if err != nil {
		return dns.Packet{}, err
	}

	addr, err := net.ResolveUDPAddr("udp", t.server)
	if err != nil {
		return dns.Packet{}, wrapNetErr("resolve "+t.server, err)
	}
	c, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return dns.Packet{}, wrapNetErr("dial "+t.server, err)
	}
	defer c.Close()

	_ = c.SetDeadline(deadlineFor(ctx, t.timeout))

	if _, err := c.Write(reqBytes); err != nil {
		return dns.Packet{}, wrapNetErr("send", err)
	}

	buf := t.recvBuffer(req)
	defer t.buffers.Put(buf)
	n, err := c.Read(buf)
	if err != nil {
		return dns.Packet{}, wrapNetErr("receive", err)
	}
	slog.Debug("udp exchange complete", "server", t.server, "bytes", n)

	respBytes := make([]byte, n)
	copy(respBytes, buf[:n])
	return decodeAndVerify(req, respBytes)
}

// recvBuffer returns a receive buffer at least as large as the configured
// size and as any EDNS payload size the request advertises. Oversized
// one-off buffers are allocated fresh; Put drops them instead of letting
// them into the pool.
func (t *UDP) recvBuffer(req dns.Packet) []byte {
	need := dns.AdvertisedUDPSize(req)
	if need <= t.buffers.Size() {
		return t.buffers.Get()
	}
	return make([]byte, need)
}
