package dns

import (
	"encoding/binary"
	"fmt"

	"github.com/dugdns/dug/internal/helpers"
)

// EDNS (Extension Mechanisms for DNS) constants per RFC 6891.
const (
	DefaultUDPPayloadSize     = 512  // Traditional DNS UDP limit (RFC 1035)
	EDNSDefaultUDPPayloadSize = 1232 // Safe EDNS size avoiding fragmentation
	EDNSMaxUDPPayloadSize     = 4096 // Maximum practical EDNS UDP size
	EDNSMinUDPPayloadSize     = 512  // Minimum EDNS UDP payload size
)

// EDNSOption represents one (code, data) pair in the OPT record's RDATA.
type EDNSOption struct {
	Code uint16 // Option code (e.g. 10 = COOKIE, 12 = PADDING)
	Data []byte // Option data
}

const ednsOptionHeaderLen = 4

// Marshal serializes an EDNS option to wire format.
func (o EDNSOption) Marshal() []byte {
	b := make([]byte, ednsOptionHeaderLen+len(o.Data))
	binary.BigEndian.PutUint16(b[0:2], o.Code)
	binary.BigEndian.PutUint16(b[2:4], helpers.ClampIntToUint16(len(o.Data)))
	copy(b[4:], o.Data)
	return b
}

// OPTRecord represents an EDNS OPT pseudo-record (RFC 6891).
//
// The OPT record deliberately overloads the fixed resource-record fields:
//   - NAME: Must be root (0x00)
//   - TYPE: 41 (OPT)
//   - CLASS: Requester's UDP payload size (not a class!)
//   - TTL: Extended RCODE, version, and flags (packed into 32 bits)
//   - RDATA: Zero or more EDNS options
//
// TTL field layout (32 bits):
//
//	+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+
//	|         EXTENDED-RCODE        |            VERSION            |
//	+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+
//	| DO|                    Z (reserved)                           |
//	+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+---+
//
// Bits 31-24: Extended RCODE (upper 8 bits)
// Bits 23-16: EDNS version
// Bit 15: DO (DNSSEC OK) flag
// Bits 14-0: Reserved (must be zero)
//
// This dual use of header fields is part of the protocol and is preserved
// exactly: Header and SetHeader translate between the packed wire fields and
// the structured form, so the generic record marshalling path needs no
// special case.
type OPTRecord struct {
	UDPPayloadSize uint16       // Sender's maximum UDP payload size
	ExtendedRCode  uint8        // Upper 8 bits of RCODE
	Version        uint8        // EDNS version (must be 0)
	DNSSECOk       bool         // DO flag: client supports DNSSEC
	Options        []EDNSOption // EDNS options, order preserved
}

// NewOPTRecord creates an OPT record advertising the given UDP payload size.
func NewOPTRecord(udpPayloadSize int, dnssecOk bool) *OPTRecord {
	sz := helpers.ClampInt(udpPayloadSize, EDNSMinUDPPayloadSize, 65535)
	return &OPTRecord{
		UDPPayloadSize: helpers.ClampIntToUint16(sz),
		DNSSECOk:       dnssecOk,
	}
}

// Type returns TypeOPT.
func (r *OPTRecord) Type() RecordType { return TypeOPT }

// Header synthesizes the overloaded fixed fields: CLASS carries the UDP
// payload size and TTL the packed extended-RCODE/version/DO block. The name
// is always root.
func (r *OPTRecord) Header() RRHeader {
	return RRHeader{
		Name:  "",
		Class: r.UDPPayloadSize,
		TTL:   packOPTTTL(r.ExtendedRCode, r.Version, r.DNSSECOk),
	}
}

// SetHeader unpacks the overloaded fixed fields set by the record parser.
func (r *OPTRecord) SetHeader(h RRHeader) {
	r.UDPPayloadSize = h.Class
	r.ExtendedRCode = helpers.ClampUint32ToUint8((h.TTL >> 24) & 0xFF)
	r.Version = helpers.ClampUint32ToUint8((h.TTL >> 16) & 0xFF)
	r.DNSSECOk = (h.TTL>>15)&0x1 == 1
}

// MarshalRData serializes the EDNS options in order.
func (r *OPTRecord) MarshalRData() ([]byte, error) {
	size := 0
	for _, o := range r.Options {
		if len(o.Data) > 65535 {
			return nil, fmt.Errorf("%w: EDNS option data too large (%d bytes)", ErrDNSError, len(o.Data))
		}
		size += ednsOptionHeaderLen + len(o.Data)
	}
	out := make([]byte, 0, size)
	for _, o := range r.Options {
		out = append(out, o.Marshal()...)
	}
	return out, nil
}

// ParseOPTRData parses OPT record RDATA: a sequence of (code, length, data)
// option triples filling the window exactly. A truncated option is a
// malformed record, not a partial result.
func ParseOPTRData(msg []byte, off *int, rdlen int) (*OPTRecord, error) {
	end := *off + rdlen
	if end > len(msg) {
		return nil, fmt.Errorf("%w: unexpected EOF reading OPT record (RFC 6891 §6.1)", ErrDNSError)
	}
	var opts []EDNSOption // nil when the window is empty
	for *off < end {
		if end-*off < ednsOptionHeaderLen {
			return nil, fmt.Errorf("%w: EDNS option header overruns RDATA (RFC 6891 §6.1.2)", ErrDNSError)
		}
		code := binary.BigEndian.Uint16(msg[*off : *off+2])
		ln := int(binary.BigEndian.Uint16(msg[*off+2 : *off+4]))
		*off += ednsOptionHeaderLen
		if *off+ln > end {
			return nil, fmt.Errorf("%w: EDNS option data overruns RDATA (RFC 6891 §6.1.2)", ErrDNSError)
		}
		data := make([]byte, ln)
		copy(data, msg[*off:*off+ln])
		*off += ln
		opts = append(opts, EDNSOption{Code: code, Data: data})
	}
	return &OPTRecord{Options: opts}, nil
}

// packOPTTTL constructs the 32-bit TTL field for an OPT record.
//
// Layout:
//   - Bits 31-24: Extended RCODE
//   - Bits 23-16: Version
//   - Bit 15: DO (DNSSEC OK) flag
//   - Bits 14-0: Reserved (zero)
func packOPTTTL(extRCode, version uint8, dnssecOk bool) uint32 {
	ttl := uint32(extRCode)<<24 | uint32(version)<<16
	if dnssecOk {
		ttl |= 1 << 15 // Set DO flag (bit 15)
	}
	return ttl
}

// ExtractOPT finds the OPT record in the additionals section.
// Returns nil if no OPT record is present.
func ExtractOPT(additionals []Record) *OPTRecord {
	for _, r := range additionals {
		if opt, ok := r.(*OPTRecord); ok {
			return opt
		}
	}
	return nil
}

// AdvertisedUDPSize returns the UDP payload size a request's OPT record
// advertises, or DefaultUDPPayloadSize (512) when no EDNS is present.
// Sizes below 512 are rounded up per RFC 6891 Section 6.2.3.
func AdvertisedUDPSize(p Packet) int {
	opt := ExtractOPT(p.Additionals)
	if opt == nil {
		return DefaultUDPPayloadSize
	}
	if opt.UDPPayloadSize < DefaultUDPPayloadSize {
		return DefaultUDPPayloadSize
	}
	return int(opt.UDPPayloadSize)
}
