package dns

import (
	"encoding/binary"
	"fmt"
)

// SRVRecord represents a service locator record (RFC 2782).
//
// RDATA layout:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                   PRIORITY                    |  2 bytes
//	|                    WEIGHT                     |  2 bytes
//	|                     PORT                      |  2 bytes
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	/                    TARGET                     /  Domain name
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
type SRVRecord struct {
	H        RRHeader
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   string
}

// Type returns TypeSRV.
func (r *SRVRecord) Type() RecordType { return TypeSRV }

// Header returns the record header.
func (r *SRVRecord) Header() RRHeader { return r.H }

// SetHeader sets the record header.
func (r *SRVRecord) SetHeader(h RRHeader) { r.H = h }

// MarshalRData marshals the SRV fields to wire format.
func (r *SRVRecord) MarshalRData() ([]byte, error) {
	name, err := EncodeName(r.Target)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 6, 6+len(name))
	binary.BigEndian.PutUint16(out[0:2], r.Priority)
	binary.BigEndian.PutUint16(out[2:4], r.Weight)
	binary.BigEndian.PutUint16(out[4:6], r.Port)
	return append(out, name...), nil
}

// ParseSRVRData parses SRV record RDATA from wire format.
//
// RFC 2782 forbids compressing the target name, but servers exist that do it
// anyway, so the target is decoded against the whole message like any other
// embedded name.
func ParseSRVRData(msg []byte, off *int, start, rdlen int) (*SRVRecord, error) {
	if rdlen < 7 || *off+6 > len(msg) {
		return nil, fmt.Errorf("%w: SRV record too short (RFC 2782), got %d bytes", ErrDNSError, rdlen)
	}
	r := &SRVRecord{
		Priority: binary.BigEndian.Uint16(msg[*off : *off+2]),
		Weight:   binary.BigEndian.Uint16(msg[*off+2 : *off+4]),
		Port:     binary.BigEndian.Uint16(msg[*off+4 : *off+6]),
	}
	*off += 6
	target, err := DecodeName(msg, off)
	if err != nil {
		return nil, err
	}
	if *off-start != rdlen {
		return nil, fmt.Errorf("%w: SRV record RDATA length mismatch (RFC 2782)", ErrDNSError)
	}
	r.Target = target
	return r, nil
}
