package dns

import (
	"encoding/binary"
	"fmt"

	"github.com/dugdns/dug/internal/helpers"
)

// RRHeader contains common metadata for DNS resource records.
// This is distinct from Header which is the DNS message header.
//
// Class and TTL are kept as raw wire values because the OPT pseudo-record
// (RFC 6891) overloads both fields; see edns.go.
type RRHeader struct {
	Name  string
	Class uint16
	TTL   uint32
}

// NewRRHeader creates a new resource record header.
func NewRRHeader(name string, class RecordClass, ttl uint32) RRHeader {
	return RRHeader{Name: name, Class: uint16(class), TTL: ttl}
}

// Record is the interface for DNS resource records.
//
// The record set is open-ended; dispatch happens on the numeric type code
// read from the wire, and adding a new type means adding one variant and one
// case in parseRData. Types without a variant parse to OpaqueRecord.
type Record interface {
	// Type returns the DNS record type.
	Type() RecordType

	// Header returns the record's metadata.
	Header() RRHeader

	// SetHeader sets the record's metadata.
	SetHeader(h RRHeader)

	// MarshalRData marshals the record-specific data (RDATA) to wire format.
	MarshalRData() ([]byte, error)
}

// ParseRecord parses a resource record from wire format.
// It advances *off past the parsed record on success.
//
// The RDATA window is bounds-checked before dispatch: a record whose declared
// RDLENGTH exceeds the remaining bytes is malformed, and each variant parser
// additionally verifies that it consumed exactly RDLENGTH bytes where the
// encoding is self-delimiting.
func ParseRecord(msg []byte, off *int) (Record, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return nil, err
	}
	if *off+10 > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF while reading DNS record", ErrDNSError)
	}
	rrType := binary.BigEndian.Uint16(msg[*off : *off+2])
	rrClass := binary.BigEndian.Uint16(msg[*off+2 : *off+4])
	ttl := binary.BigEndian.Uint32(msg[*off+4 : *off+8])
	rdlen := binary.BigEndian.Uint16(msg[*off+8 : *off+10])
	*off += 10
	start := *off
	if start+int(rdlen) > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF while reading DNS record rdata", ErrDNSError)
	}

	tr, err := parseRData(RecordType(rrType), msg, off, start, int(rdlen))
	if err != nil {
		return nil, err
	}
	tr.SetHeader(RRHeader{Name: name, Class: rrClass, TTL: ttl})

	return tr, nil
}

// parseRData parses RDATA into a Record based on record type.
//
// Every type the lookup engine renders structurally gets its own variant;
// everything else (DNSSEC material included) is carried opaquely so that an
// unknown type never fails a lookup.
func parseRData(rt RecordType, msg []byte, off *int, start, rdlen int) (Record, error) {
	switch rt {
	case TypeA, TypeAAAA:
		return ParseIPRData(msg, off, rdlen, rt)
	case TypeCNAME, TypeNS, TypePTR:
		return ParseNameRData(msg, off, start, rdlen, rt)
	case TypeMX:
		return ParseMXRData(msg, off, start, rdlen)
	case TypeSOA:
		return ParseSOARData(msg, off, start, rdlen)
	case TypeSRV:
		return ParseSRVRData(msg, off, start, rdlen)
	case TypeTXT:
		return ParseTXTRData(msg, off, rdlen)
	case TypeCAA:
		return ParseCAARData(msg, off, rdlen)
	case TypeOPT:
		return ParseOPTRData(msg, off, rdlen)
	default:
		return ParseOpaqueRData(msg, off, rdlen, rt)
	}
}

// MarshalRecord converts a Record to wire-format bytes.
func MarshalRecord(r Record) ([]byte, error) {
	rdata, err := r.MarshalRData()
	if err != nil {
		return nil, err
	}
	return marshalRecordWithRData(r.Header(), r.Type(), rdata)
}

// marshalRecordWithRData marshals a Record using pre-computed RDATA.
//
// The OPT pseudo-record carries the root name; OPTRecord synthesizes its
// overloaded CLASS and TTL fields through Header(), so no special case is
// needed for the fixed portion here.
func marshalRecordWithRData(h RRHeader, rt RecordType, rdata []byte) ([]byte, error) {
	nameWire := []byte{0}
	if rt != TypeOPT {
		b, err := EncodeName(h.Name)
		if err != nil {
			return nil, err
		}
		nameWire = b
	}

	if len(rdata) > 65535 {
		return nil, fmt.Errorf("%w: rdata too large: %d bytes (max 65535)", ErrDNSError, len(rdata))
	}
	out := make([]byte, 0, len(nameWire)+10+len(rdata))
	out = append(out, nameWire...)
	fixed := make([]byte, 10)
	binary.BigEndian.PutUint16(fixed[0:2], uint16(rt))
	binary.BigEndian.PutUint16(fixed[2:4], h.Class)
	binary.BigEndian.PutUint32(fixed[4:8], h.TTL)
	binary.BigEndian.PutUint16(fixed[8:10], helpers.ClampIntToUint16(len(rdata)))
	out = append(out, fixed...)
	out = append(out, rdata...)
	return out, nil
}
