package dns

import (
	"fmt"
	"net"
)

// IPRecord represents an address record: A (RFC 1035 §3.4.1, 4-byte RDATA)
// or AAAA (RFC 3596 §2.2, 16-byte RDATA).
//
// The wire type is stored, not derived from the address bytes: an AAAA
// record may legally carry an IPv4-mapped address (::ffff:a.b.c.d), and its
// type and 16-byte RDATA must survive a decode/encode round trip unchanged.
type IPRecord struct {
	H    RRHeader
	T    RecordType
	Addr net.IP
}

// NewIPRecord creates an address record, picking A or AAAA from the address
// version. To build an AAAA carrying a mapped IPv4 address, set T directly.
func NewIPRecord(h RRHeader, addr net.IP) *IPRecord {
	rt := TypeAAAA
	if addr.To4() != nil {
		rt = TypeA
	}
	return &IPRecord{H: h, T: rt, Addr: addr}
}

// Type returns the wire record type (TypeA or TypeAAAA).
func (r *IPRecord) Type() RecordType { return r.T }

// Header returns the record header.
func (r *IPRecord) Header() RRHeader { return r.H }

// SetHeader sets the record header.
func (r *IPRecord) SetHeader(h RRHeader) { r.H = h }

// MarshalRData emits the address in the width the record type demands:
// 4 bytes for A, 16 for AAAA.
func (r *IPRecord) MarshalRData() ([]byte, error) {
	switch r.T {
	case TypeA:
		if ip4 := r.Addr.To4(); ip4 != nil {
			return []byte(ip4), nil
		}
		return nil, fmt.Errorf("%w: A record requires an IPv4 address, got %q", ErrDNSError, r.Addr)
	case TypeAAAA:
		if ip16 := r.Addr.To16(); ip16 != nil {
			return []byte(ip16), nil
		}
		return nil, fmt.Errorf("%w: invalid IP address %q", ErrDNSError, r.Addr)
	default:
		return nil, fmt.Errorf("%w: IPRecord type must be A or AAAA, got %s", ErrDNSError, r.T)
	}
}

// ipRDataLen is the RDATA width each address type requires.
func ipRDataLen(rt RecordType) int {
	if rt == TypeAAAA {
		return 16
	}
	return 4
}

// ParseIPRData parses A or AAAA record RDATA from wire format. The RDATA
// length must match the record type exactly; a 16-byte A or 4-byte AAAA is
// malformed, not reinterpreted.
func ParseIPRData(msg []byte, off *int, rdlen int, rt RecordType) (*IPRecord, error) {
	want := ipRDataLen(rt)
	if rdlen != want {
		return nil, fmt.Errorf("%w: %s record RDATA must be %d bytes, got %d", ErrDNSError, rt, want, rdlen)
	}
	if *off+rdlen > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF reading %s record", ErrDNSError, rt)
	}
	b := make([]byte, rdlen)
	copy(b, msg[*off:*off+rdlen])
	*off += rdlen
	return &IPRecord{T: rt, Addr: net.IP(b)}, nil
}
