// Package lookup orchestrates DNS exchanges: it builds the query packet,
// picks a transport, and applies the single bounded retry DNS defines --
// a truncated UDP response is re-issued once over TCP.
package lookup

import (
	"context"
	"crypto/tls"
	"log/slog"
	"sync"
	"time"

	"github.com/dugdns/dug/internal/dns"
	"github.com/dugdns/dug/internal/transport"
)

// Client issues one-shot DNS queries to a single configured resolver.
//
// Each Lookup is a self-contained blocking operation; concurrent Lookups on
// the same Client are safe because exchanges share no mutable state except
// the transaction-ID source, which is concurrency-safe by contract.
type Client struct {
	// Server is the resolver address (HOST or HOST:PORT).
	Server string

	// Kind selects the transport. Zero value defaults to UDP.
	Kind transport.Kind

	// Endpoint is the DoH URL; only used with transport.KindHTTPS.
	Endpoint string

	// Timeout bounds each exchange. Zero selects per-transport defaults.
	Timeout time.Duration

	// RecvSize is the minimum UDP receive buffer size; see transport.Options.
	RecvSize int

	// EDNS controls whether queries carry an OPT record advertising
	// EDNSSize (or the EDNS default when zero).
	EDNS     bool
	EDNSSize int

	// DNSSEC sets the DO flag on the OPT record, asking the server to
	// include DNSSEC material in responses. Implies EDNS.
	DNSSEC bool

	// TLSConfig overrides TLS settings for the DoT/DoH transports.
	TLSConfig *tls.Config

	// TxIDs supplies transaction IDs; nil selects CryptoTxIDSource.
	TxIDs TxIDSource
}

// Result pairs a decoded response with the transport that produced it, which
// differs from the configured one after a truncation fallback.
type Result struct {
	Response dns.Packet
	Via      transport.Kind
	Elapsed  time.Duration
}

// Lookup sends one query for the given question and returns the decoded,
// verified response.
//
// On a truncated UDP response the identical query is re-issued over TCP to
// the same server exactly once; no further fallback is attempted, and
// responses from TCP/TLS/HTTPS are returned with the TC flag intact should a
// server ever set it there. A non-zero RCODE is data for the caller to
// inspect, not an error.
func (c *Client) Lookup(ctx context.Context, q dns.Question) (Result, error) {
	kind := c.Kind
	if kind == "" {
		kind = transport.KindUDP
	}

	req, err := c.buildQuery(q)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	resp, err := c.exchange(ctx, kind, req)
	if err != nil {
		return Result{}, err
	}

	if kind == transport.KindUDP && resp.Header.Truncated() {
		slog.Debug("udp response truncated, retrying over tcp", "question", q.String())
		resp, err = c.exchange(ctx, transport.KindTCP, req)
		if err != nil {
			return Result{}, err
		}
		kind = transport.KindTCP
	}

	return Result{Response: resp, Via: kind, Elapsed: time.Since(start)}, nil
}

// LookupAll issues one Lookup per record type concurrently and returns the
// outcomes in input order. Exchanges are independent; a failure of one does
// not cancel the others.
func (c *Client) LookupAll(ctx context.Context, name string, types []dns.RecordType) ([]Result, []error) {
	results := make([]Result, len(types))
	errs := make([]error, len(types))

	var wg sync.WaitGroup
	for i, rt := range types {
		i, rt := i, rt
		wg.Add(1)
		go func() {
			defer wg.Done()
			q := dns.Question{Name: name, Type: rt, Class: dns.ClassIN}
			results[i], errs[i] = c.Lookup(ctx, q)
		}()
	}
	wg.Wait()
	return results, errs
}

// buildQuery assembles the request packet: fresh transaction ID, RD flag,
// one question, and an OPT additional when EDNS is on.
func (c *Client) buildQuery(q dns.Question) (dns.Packet, error) {
	ids := c.TxIDs
	if ids == nil {
		ids = CryptoTxIDSource{}
	}
	id, err := ids.Next()
	if err != nil {
		return dns.Packet{}, err
	}

	req := dns.NewQuery(id, q)
	if c.EDNS || c.DNSSEC {
		size := c.EDNSSize
		if size <= 0 {
			size = dns.EDNSDefaultUDPPayloadSize
		}
		req.Additionals = append(req.Additionals, dns.NewOPTRecord(size, c.DNSSEC))
	}
	return req, nil
}

// exchange runs one transport exchange with the client's settings.
func (c *Client) exchange(ctx context.Context, kind transport.Kind, req dns.Packet) (dns.Packet, error) {
	tr, err := transport.New(kind, transport.Options{
		Server:    c.Server,
		Endpoint:  c.Endpoint,
		Timeout:   c.Timeout,
		RecvSize:  c.RecvSize,
		TLSConfig: c.TLSConfig,
	})
	if err != nil {
		return dns.Packet{}, err
	}
	return tr.Exchange(ctx, req)
}
