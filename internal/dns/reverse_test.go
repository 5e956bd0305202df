package dns

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseName_IPv4(t *testing.T) {
	n, err := ReverseName(net.ParseIP("192.0.2.53"))
	require.NoError(t, err)
	assert.Equal(t, "53.2.0.192.in-addr.arpa", n)
}

func TestReverseName_IPv6(t *testing.T) {
	n, err := ReverseName(net.ParseIP("2001:db8::567:89ab"))
	require.NoError(t, err)
	assert.Equal(t,
		"b.a.9.8.7.6.5.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.8.b.d.0.1.0.0.2.ip6.arpa", n)
}

func TestReverseName_MappedIPv4UsesInAddr(t *testing.T) {
	// A v4-mapped address reverses in in-addr.arpa, not ip6.arpa.
	n, err := ReverseName(net.ParseIP("::ffff:10.0.0.1"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0.10.in-addr.arpa", n)
}

func TestReverseName_Invalid(t *testing.T) {
	_, err := ReverseName(net.IP{1, 2, 3})
	assert.Error(t, err)
}
