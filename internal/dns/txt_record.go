package dns

import "fmt"

// TXTRecord represents a text record (RFC 1035 Section 3.3.14).
//
// RDATA is a sequence of character strings, each prefixed by a single length
// byte. Order is significant and preserved; a TXT record with zero strings
// (empty RDATA) is valid.
type TXTRecord struct {
	H       RRHeader
	Strings [][]byte
}

// NewTXTRecord creates a new TXT record from the given character strings.
func NewTXTRecord(h RRHeader, strs ...[]byte) *TXTRecord {
	return &TXTRecord{H: h, Strings: strs}
}

// Type returns TypeTXT.
func (r *TXTRecord) Type() RecordType { return TypeTXT }

// Header returns the record header.
func (r *TXTRecord) Header() RRHeader { return r.H }

// SetHeader sets the record header.
func (r *TXTRecord) SetHeader(h RRHeader) { r.H = h }

// MarshalRData marshals the character strings to wire format.
func (r *TXTRecord) MarshalRData() ([]byte, error) {
	size := 0
	for _, s := range r.Strings {
		if len(s) > 255 {
			return nil, fmt.Errorf("%w: TXT character string too long (%d > 255)", ErrDNSError, len(s))
		}
		size += 1 + len(s)
	}
	out := make([]byte, 0, size)
	for _, s := range r.Strings {
		out = append(out, byte(len(s)))
		out = append(out, s...)
	}
	return out, nil
}

// ParseTXTRData parses TXT record RDATA from wire format.
// Character strings are read until the RDATA window is exhausted; a string
// running past the window is a malformed record.
func ParseTXTRData(msg []byte, off *int, rdlen int) (*TXTRecord, error) {
	end := *off + rdlen
	if end > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF reading TXT record (RFC 1035 §3.3.14)", ErrDNSError)
	}
	var strs [][]byte // nil for an empty TXT record
	for *off < end {
		slen := int(msg[*off])
		*off++
		if *off+slen > end {
			return nil, fmt.Errorf("%w: TXT character string overruns RDATA (RFC 1035 §3.3.14)", ErrDNSError)
		}
		s := make([]byte, slen)
		copy(s, msg[*off:*off+slen])
		*off += slen
		strs = append(strs, s)
	}
	return &TXTRecord{Strings: strs}, nil
}
