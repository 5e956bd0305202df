package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dugdns/dug/internal/dns"
)

// DNSMessageMediaType is the DoH content type (RFC 8484 Section 6).
const DNSMessageMediaType = "application/dns-message"

// HTTPS implements DNS-over-HTTPS (RFC 8484): the encoded message is POSTed
// as the request body to the resolver endpoint, and the response body is
// handed to the codec unmodified once HTTP-level success is confirmed.
// Non-2xx statuses are transport errors.
//
// Keep-alives are disabled so each exchange uses its own connection, in line
// with the other transports.
type HTTPS struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

// NewHTTPS creates a DNS-over-HTTPS transport. Endpoint is the full resolver
// URL ("https://1.1.1.1/dns-query"); when empty it is derived from Server.
func NewHTTPS(o Options) *HTTPS {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPSTimeout
	}
	endpoint := o.Endpoint
	if endpoint == "" {
		endpoint = "https://" + serverAddr(o.Server, KindHTTPS) + "/dns-query"
	}
	var tlsConfig *tls.Config
	if o.TLSConfig != nil {
		tlsConfig = o.TLSConfig.Clone()
	}
	return &HTTPS{
		endpoint: endpoint,
		timeout:  timeout,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
				TLSClientConfig:   tlsConfig,
			},
		},
	}
}

// Exchange implements Transport.
func (t *HTTPS) Exchange(ctx context.Context, req dns.Packet) (dns.Packet, error) {
	reqBytes, err := req.Marshal()
	if err != nil {
		return dns.Packet{}, err
	}

	ctx, cancel := context.WithDeadline(ctx, deadlineFor(ctx, t.timeout))
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return dns.Packet{}, fmt.Errorf("%w: build request for %s: %v", ErrTransport, t.endpoint, err)
	}
	httpReq.Header.Set("Content-Type", DNSMessageMediaType)
	httpReq.Header.Set("Accept", DNSMessageMediaType)

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return dns.Packet{}, wrapNetErr("post "+t.endpoint, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return dns.Packet{}, fmt.Errorf("%w: %s returned HTTP %d", ErrTransport, t.endpoint, httpResp.StatusCode)
	}

	respBytes, err := io.ReadAll(io.LimitReader(httpResp.Body, dns.MaxIncomingDNSMessageSize+1))
	if err != nil {
		return dns.Packet{}, wrapNetErr("read response body", err)
	}
	slog.Debug("https exchange complete", "endpoint", t.endpoint, "bytes", len(respBytes))
	return decodeAndVerify(req, respBytes)
}
