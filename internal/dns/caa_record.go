package dns

import "fmt"

// CAARecord represents a certification authority authorization record
// (RFC 8659).
//
// RDATA layout:
//
//	+--+--+--+--+--+--+--+--+
//	|         FLAGS         |  1 byte (bit 7 = issuer critical)
//	+--+--+--+--+--+--+--+--+
//	|      TAG LENGTH       |  1 byte
//	+--+--+--+--+--+--+--+--+
//	/          TAG          /  e.g. "issue", "issuewild", "iodef"
//	+--+--+--+--+--+--+--+--+
//	/         VALUE         /  Remainder of RDATA
//	+--+--+--+--+--+--+--+--+
type CAARecord struct {
	H     RRHeader
	Flags uint8
	Tag   string
	Value []byte
}

// Type returns TypeCAA.
func (r *CAARecord) Type() RecordType { return TypeCAA }

// Header returns the record header.
func (r *CAARecord) Header() RRHeader { return r.H }

// SetHeader sets the record header.
func (r *CAARecord) SetHeader(h RRHeader) { r.H = h }

// Critical returns true if the issuer-critical bit (bit 7 of FLAGS) is set.
func (r *CAARecord) Critical() bool { return r.Flags&0x80 != 0 }

// MarshalRData marshals the CAA fields to wire format.
func (r *CAARecord) MarshalRData() ([]byte, error) {
	if len(r.Tag) == 0 || len(r.Tag) > 255 {
		return nil, fmt.Errorf("%w: CAA tag length must be 1..255, got %d", ErrDNSError, len(r.Tag))
	}
	out := make([]byte, 0, 2+len(r.Tag)+len(r.Value))
	out = append(out, r.Flags, byte(len(r.Tag)))
	out = append(out, r.Tag...)
	out = append(out, r.Value...)
	return out, nil
}

// ParseCAARData parses CAA record RDATA from wire format.
func ParseCAARData(msg []byte, off *int, rdlen int) (*CAARecord, error) {
	if rdlen < 2 || *off+rdlen > len(msg) {
		return nil, fmt.Errorf("%w: CAA record too short (RFC 8659 §4.1), got %d bytes", ErrDNSError, rdlen)
	}
	flags := msg[*off]
	tagLen := int(msg[*off+1])
	if tagLen == 0 || 2+tagLen > rdlen {
		return nil, fmt.Errorf("%w: CAA tag overruns RDATA (RFC 8659 §4.1)", ErrDNSError)
	}
	tag := string(msg[*off+2 : *off+2+tagLen])
	value := make([]byte, rdlen-2-tagLen)
	copy(value, msg[*off+2+tagLen:*off+rdlen])
	*off += rdlen
	return &CAARecord{Flags: flags, Tag: tag, Value: value}, nil
}
