package dns

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ReverseName builds the PTR query name for an IP address (RFC 1035 §3.5,
// RFC 3596 §2.5): "4.3.2.1.in-addr.arpa" for IPv4, nibble-reversed
// "ip6.arpa" form for IPv6.
func ReverseName(ip net.IP) (string, error) {
	if ip4 := ip.To4(); ip4 != nil {
		return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa", ip4[3], ip4[2], ip4[1], ip4[0]), nil
	}
	ip6 := ip.To16()
	if ip6 == nil {
		return "", fmt.Errorf("invalid IP address %q", ip.String())
	}
	var b strings.Builder
	b.Grow(len(ip6)*4 + len("ip6.arpa"))
	for i := len(ip6) - 1; i >= 0; i-- {
		b.WriteString(strconv.FormatUint(uint64(ip6[i]&0x0F), 16))
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(uint64(ip6[i]>>4), 16))
		b.WriteByte('.')
	}
	b.WriteString("ip6.arpa")
	return b.String(), nil
}
