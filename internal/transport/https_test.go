package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dugdns/dug/internal/dns"
)

// newDoHServer runs a gin-based DNS-over-HTTPS resolver on a loopback
// httptest server. The handler receives the decoded query and returns the
// raw bytes to send back.
func newDoHServer(t *testing.T, handler func(req dns.Packet) []byte) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/dns-query", func(c *gin.Context) {
		if c.ContentType() != DNSMessageMediaType {
			c.Status(http.StatusUnsupportedMediaType)
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		req, err := dns.ParsePacket(body)
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Data(http.StatusOK, DNSMessageMediaType, handler(req))
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPS_Exchange(t *testing.T) {
	ts := newDoHServer(t, func(req dns.Packet) []byte {
		return mustMarshal(t, answerFor(req))
	})

	tr := NewHTTPS(Options{Endpoint: ts.URL + "/dns-query", Timeout: 3 * time.Second})
	resp, err := tr.Exchange(context.Background(), testQuery(0x8484))
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8484), resp.Header.ID)
	require.Len(t, resp.Answers, 1)
}

func TestHTTPS_NonSuccessStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/dns-query", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	tr := NewHTTPS(Options{Endpoint: ts.URL + "/dns-query", Timeout: 3 * time.Second})
	_, err := tr.Exchange(context.Background(), testQuery(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestHTTPS_MalformedBody(t *testing.T) {
	ts := newDoHServer(t, func(dns.Packet) []byte {
		return []byte{0xDE, 0xAD}
	})

	tr := NewHTTPS(Options{Endpoint: ts.URL + "/dns-query", Timeout: 3 * time.Second})
	_, err := tr.Exchange(context.Background(), testQuery(1))
	assert.ErrorIs(t, err, dns.ErrDNSError)
}

func TestHTTPS_MismatchedID(t *testing.T) {
	ts := newDoHServer(t, func(req dns.Packet) []byte {
		resp := answerFor(req)
		resp.Header.ID++
		return mustMarshal(t, resp)
	})

	tr := NewHTTPS(Options{Endpoint: ts.URL + "/dns-query", Timeout: 3 * time.Second})
	_, err := tr.Exchange(context.Background(), testQuery(1))
	assert.ErrorIs(t, err, ErrMismatch)
}

func TestHTTPS_Timeout(t *testing.T) {
	release := make(chan struct{})
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/dns-query", func(c *gin.Context) {
		<-release
		c.Status(http.StatusOK)
	})
	ts := httptest.NewServer(r)
	t.Cleanup(func() {
		close(release)
		ts.Close()
	})

	tr := NewHTTPS(Options{Endpoint: ts.URL + "/dns-query", Timeout: 100 * time.Millisecond})
	_, err := tr.Exchange(context.Background(), testQuery(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestHTTPS_EndpointDerivedFromServer(t *testing.T) {
	tr := NewHTTPS(Options{Server: "9.9.9.9"})
	assert.Equal(t, "https://9.9.9.9:443/dns-query", tr.endpoint)
}
