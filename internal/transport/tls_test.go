package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"io"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dugdns/dug/internal/dns"
)

// testTLSConfigs generates a self-signed certificate for 127.0.0.1 and
// returns a server config using it plus a client config that trusts it.
func testTLSConfigs(t *testing.T) (server, client *tls.Config) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "dns-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(cert)

	server = &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}},
	}
	client = &tls.Config{RootCAs: pool, ServerName: "127.0.0.1"}
	return server, client
}

// serveTLSOnce accepts one TLS connection and answers one framed query.
func serveTLSOnce(t *testing.T, cfg *tls.Config, handler func(req dns.Packet) []byte) (addr string, done chan struct{}) {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", cfg)
	require.NoError(t, err)
	done = make(chan struct{})
	go func() {
		defer close(done)
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

		var prefix [2]byte
		if _, err := io.ReadFull(conn, prefix[:]); err != nil {
			return
		}
		body := make([]byte, binary.BigEndian.Uint16(prefix[:]))
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		req, err := dns.ParsePacket(body)
		if err != nil {
			return
		}
		if out := handler(req); out != nil {
			writeFramed(conn, out)
		}
	}()
	return ln.Addr().String(), done
}

func TestTLS_Exchange(t *testing.T) {
	serverCfg, clientCfg := testTLSConfigs(t)
	addr, done := serveTLSOnce(t, serverCfg, func(req dns.Packet) []byte {
		return mustMarshal(t, answerFor(req))
	})
	defer func() { <-done }()

	tr := NewTLS(Options{Server: addr, Timeout: 3 * time.Second, TLSConfig: clientCfg})
	resp, err := tr.Exchange(context.Background(), testQuery(0x5353))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x5353), resp.Header.ID)
	require.Len(t, resp.Answers, 1)
}

func TestTLS_HandshakeFailure(t *testing.T) {
	serverCfg, _ := testTLSConfigs(t)
	addr, done := serveTLSOnce(t, serverCfg, func(req dns.Packet) []byte {
		return mustMarshal(t, answerFor(req))
	})
	defer func() { <-done }()

	// Client that does not trust the test certificate.
	untrusting := &tls.Config{RootCAs: x509.NewCertPool(), ServerName: "127.0.0.1"}
	tr := NewTLS(Options{Server: addr, Timeout: 3 * time.Second, TLSConfig: untrusting})
	_, err := tr.Exchange(context.Background(), testQuery(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, dns.ErrDNSError)
}

func TestTLS_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	tr := NewTLS(Options{Server: addr, Timeout: 1 * time.Second})
	_, err = tr.Exchange(context.Background(), testQuery(1))
	assert.ErrorIs(t, err, ErrTransport)
}
