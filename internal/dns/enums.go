package dns

import (
	"fmt"
	"strconv"
	"strings"
)

// DNS header flags and masks (RFC 1035 Section 4.1.1)
//
// The DNS header contains a 16-bit flags field with the following layout:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA| Z|AD|CD|   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
//
// Bit positions (from MSB):
//   - Bit 15 (0x8000): QR - Query (0) or Response (1)
//   - Bits 14-11 (0x7800): OPCODE - Operation type (0=Query, 1=IQuery, 2=Status)
//   - Bit 10 (0x0400): AA - Authoritative Answer
//   - Bit 9 (0x0200): TC - Truncation (message was truncated)
//   - Bit 8 (0x0100): RD - Recursion Desired
//   - Bit 7 (0x0080): RA - Recursion Available
//   - Bit 6 (0x0040): Z - Reserved (must be zero)
//   - Bit 5 (0x0020): AD - Authenticated Data (DNSSEC)
//   - Bit 4 (0x0010): CD - Checking Disabled (DNSSEC)
//   - Bits 3-0 (0x000F): RCODE - Response code
const (
	QRFlag     uint16 = 0x8000 // Query/Response: 1 = response, 0 = query
	OpcodeMask uint16 = 0x7800 // Bits 14-11: operation type (use >> 11 to extract)
	AAFlag     uint16 = 0x0400 // Authoritative Answer
	TCFlag     uint16 = 0x0200 // Truncation: message was truncated
	RDFlag     uint16 = 0x0100 // Recursion Desired
	RAFlag     uint16 = 0x0080 // Recursion Available
	ZFlag      uint16 = 0x0040 // Reserved (must be zero in queries)
	ADFlag     uint16 = 0x0020 // Authenticated Data (DNSSEC)
	CDFlag     uint16 = 0x0010 // Checking Disabled (DNSSEC)
	RCodeMask  uint16 = 0x000F // Bits 3-0: response code
)

// RecordType represents DNS resource record types (RFC 1035 and successors).
type RecordType uint16

const (
	TypeA      RecordType = 1   // IPv4 address
	TypeNS     RecordType = 2   // Authoritative name server
	TypeCNAME  RecordType = 5   // Canonical name (alias)
	TypeSOA    RecordType = 6   // Start of Authority
	TypePTR    RecordType = 12  // Domain name pointer (reverse DNS)
	TypeMX     RecordType = 15  // Mail exchange
	TypeTXT    RecordType = 16  // Text strings
	TypeAAAA   RecordType = 28  // IPv6 address (RFC 3596)
	TypeSRV    RecordType = 33  // Service locator (RFC 2782)
	TypeOPT    RecordType = 41  // EDNS pseudo-record (RFC 6891)
	TypeDS     RecordType = 43  // Delegation signer (RFC 4034)
	TypeRRSIG  RecordType = 46  // DNSSEC signature (RFC 4034)
	TypeNSEC   RecordType = 47  // Next secure record (RFC 4034)
	TypeDNSKEY RecordType = 48  // DNSSEC public key (RFC 4034)
	TypeTLSA   RecordType = 52  // DANE certificate association (RFC 6698)
	TypeHTTPS  RecordType = 65  // HTTPS service binding (RFC 9460)
	TypeCAA    RecordType = 257 // Certification authority authorization (RFC 8659)
)

// recordTypeNames maps record types to their presentation names.
// Types without an entry render as TYPEnnn per RFC 3597.
var recordTypeNames = map[RecordType]string{
	TypeA:      "A",
	TypeNS:     "NS",
	TypeCNAME:  "CNAME",
	TypeSOA:    "SOA",
	TypePTR:    "PTR",
	TypeMX:     "MX",
	TypeTXT:    "TXT",
	TypeAAAA:   "AAAA",
	TypeSRV:    "SRV",
	TypeOPT:    "OPT",
	TypeDS:     "DS",
	TypeRRSIG:  "RRSIG",
	TypeNSEC:   "NSEC",
	TypeDNSKEY: "DNSKEY",
	TypeTLSA:   "TLSA",
	TypeHTTPS:  "HTTPS",
	TypeCAA:    "CAA",
}

// String returns the presentation name of the record type ("AAAA"), or the
// RFC 3597 generic form ("TYPE64001") for types without a mnemonic.
func (rt RecordType) String() string {
	if s, ok := recordTypeNames[rt]; ok {
		return s
	}
	return "TYPE" + strconv.Itoa(int(rt))
}

// ParseRecordType converts a presentation name ("aaaa", "MX") or a numeric
// string ("28", "TYPE28") into a RecordType.
func ParseRecordType(s string) (RecordType, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for rt, name := range recordTypeNames {
		if name == upper {
			return rt, nil
		}
	}
	numeric := strings.TrimPrefix(upper, "TYPE")
	n, err := strconv.ParseUint(numeric, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("unknown record type %q", s)
	}
	return RecordType(n), nil
}

// RecordClass represents DNS resource record classes (RFC 1035).
type RecordClass uint16

const (
	ClassIN RecordClass = 1 // Internet class
	ClassCH RecordClass = 3 // Chaos class (version.bind and friends)
	ClassHS RecordClass = 4 // Hesiod class
)

// String returns the presentation name of the class.
func (rc RecordClass) String() string {
	switch rc {
	case ClassIN:
		return "IN"
	case ClassCH:
		return "CH"
	case ClassHS:
		return "HS"
	default:
		return "CLASS" + strconv.Itoa(int(rc))
	}
}

// RCode represents DNS response codes (RFC 1035).
type RCode uint16

const (
	RCodeNoError  RCode = 0 // No error
	RCodeFormErr  RCode = 1 // Format error: query malformed
	RCodeServFail RCode = 2 // Server failure: internal error
	RCodeNXDomain RCode = 3 // Non-existent domain
	RCodeNotImp   RCode = 4 // Not implemented: unsupported query type
	RCodeRefused  RCode = 5 // Query refused by policy
)

// String returns the presentation name of the response code.
func (rc RCode) String() string {
	switch rc {
	case RCodeNoError:
		return "NOERROR"
	case RCodeFormErr:
		return "FORMERR"
	case RCodeServFail:
		return "SERVFAIL"
	case RCodeNXDomain:
		return "NXDOMAIN"
	case RCodeNotImp:
		return "NOTIMP"
	case RCodeRefused:
		return "REFUSED"
	default:
		return "RCODE" + strconv.Itoa(int(rc))
	}
}

// RCodeFromFlags extracts the response code from the DNS header flags.
// The RCODE occupies the low 4 bits of the flags field.
func RCodeFromFlags(flags uint16) RCode {
	return RCode(flags & RCodeMask)
}
