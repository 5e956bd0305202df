package dns

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundtripRecord marshals a record and parses it back, asserting the
// round-trip law: decode(encode(r)) == r.
func roundtripRecord(t *testing.T, r Record) Record {
	t.Helper()
	b, err := MarshalRecord(r)
	require.NoError(t, err)

	off := 0
	got, err := ParseRecord(b, &off)
	require.NoError(t, err)
	assert.Equal(t, len(b), off, "parser must consume the whole record")
	assert.Equal(t, r, got)
	return got
}

func rrh(ttl uint32) RRHeader {
	return NewRRHeader("example.com", ClassIN, ttl)
}

func TestRoundtrip_A(t *testing.T) {
	roundtripRecord(t, &IPRecord{H: rrh(300), T: TypeA, Addr: net.IP{192, 0, 2, 1}})
}

func TestRoundtrip_AAAA(t *testing.T) {
	addr := net.IP{0x20, 0x01, 0x0d, 0xb8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	roundtripRecord(t, &IPRecord{H: rrh(300), T: TypeAAAA, Addr: addr})
}

func TestRoundtrip_AAAA_MappedIPv4KeepsType(t *testing.T) {
	// An AAAA record carrying ::ffff:1.2.3.4 stays an AAAA with 16-byte
	// RDATA through a round trip; the type travels on the wire, not in the
	// address bytes.
	addr := net.IP{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0xFF, 1, 2, 3, 4}
	got := roundtripRecord(t, &IPRecord{H: rrh(300), T: TypeAAAA, Addr: addr})
	assert.Equal(t, TypeAAAA, got.Type())

	b, err := MarshalRecord(got)
	require.NoError(t, err)
	assert.Equal(t, []byte(addr), b[len(b)-16:], "RDATA stays the 16-byte mapped form")
}

func TestRoundtrip_CNAME(t *testing.T) {
	roundtripRecord(t, &NameRecord{H: rrh(60), T: TypeCNAME, Target: "alias.example.net"})
}

func TestRoundtrip_NS(t *testing.T) {
	roundtripRecord(t, &NameRecord{H: rrh(86400), T: TypeNS, Target: "ns1.example.com"})
}

func TestRoundtrip_PTR(t *testing.T) {
	roundtripRecord(t, &NameRecord{H: RRHeader{Name: "1.2.0.192.in-addr.arpa", Class: uint16(ClassIN), TTL: 300}, T: TypePTR, Target: "host.example.com"})
}

func TestRoundtrip_MX(t *testing.T) {
	roundtripRecord(t, &MXRecord{H: rrh(3600), Preference: 10, Exchange: "mail.example.com"})
}

func TestRoundtrip_RootOwnedSOA(t *testing.T) {
	// The SOA answer to a root-zone query is owned by the root name, which
	// decodes to "" and must re-encode as the single zero octet.
	roundtripRecord(t, &SOARecord{
		H:       NewRRHeader("", ClassIN, 86400),
		MName:   "a.root-servers.net",
		RName:   "nstld.verisign-grs.com",
		Serial:  2026082300,
		Refresh: 1800,
		Retry:   900,
		Expire:  604800,
		Minimum: 86400,
	})
}

func TestRoundtrip_SOA(t *testing.T) {
	roundtripRecord(t, &SOARecord{
		H:       rrh(3600),
		MName:   "ns1.example.com",
		RName:   "hostmaster.example.com",
		Serial:  2026082301,
		Refresh: 7200,
		Retry:   900,
		Expire:  1209600,
		Minimum: 300,
	})
}

func TestRoundtrip_SRV(t *testing.T) {
	roundtripRecord(t, &SRVRecord{
		H:        RRHeader{Name: "_sip._tcp.example.com", Class: uint16(ClassIN), TTL: 120},
		Priority: 10,
		Weight:   60,
		Port:     5060,
		Target:   "sip.example.com",
	})
}

func TestRoundtrip_TXT(t *testing.T) {
	roundtripRecord(t, &TXTRecord{
		H:       rrh(60),
		Strings: [][]byte{[]byte("v=spf1"), []byte("include:example.net")},
	})
}

func TestRoundtrip_TXT_Empty(t *testing.T) {
	roundtripRecord(t, &TXTRecord{H: rrh(60)})
}

func TestRoundtrip_CAA(t *testing.T) {
	roundtripRecord(t, &CAARecord{
		H:     rrh(3600),
		Flags: 0x80,
		Tag:   "issue",
		Value: []byte("ca.example.net"),
	})
}

func TestRoundtrip_OPT(t *testing.T) {
	roundtripRecord(t, &OPTRecord{
		UDPPayloadSize: 1232,
		DNSSECOk:       true,
		Options: []EDNSOption{
			{Code: 10, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
			{Code: 12, Data: make([]byte, 16)},
		},
	})
}

func TestRoundtrip_OPT_NoOptions(t *testing.T) {
	roundtripRecord(t, NewOPTRecord(512, false))
}

func TestRoundtrip_Opaque(t *testing.T) {
	got := roundtripRecord(t, &OpaqueRecord{H: rrh(30), T: RecordType(64001), Data: []byte{0xDE, 0xAD, 0xBE, 0xEF}})
	assert.Equal(t, RecordType(64001), got.Type())
}

func TestParseRecord_UnknownTypeFallsBackToOpaque(t *testing.T) {
	// RRSIG is recognized by name but not modeled structurally.
	r := &OpaqueRecord{H: rrh(30), T: TypeRRSIG, Data: []byte{1, 2, 3}}
	got := roundtripRecord(t, r)
	_, ok := got.(*OpaqueRecord)
	assert.True(t, ok)
}

func TestTXT_SPFExample(t *testing.T) {
	// Two length-prefixed character strings: "v=spf1" and "include:example.net".
	rdata := append([]byte{6}, []byte("v=spf1")...)
	rdata = append(rdata, byte(len("include:example.net")))
	rdata = append(rdata, []byte("include:example.net")...)

	off := 0
	r, err := ParseTXTRData(rdata, &off, len(rdata))
	require.NoError(t, err)
	require.Len(t, r.Strings, 2)
	assert.Equal(t, []byte("v=spf1"), r.Strings[0])
	assert.Equal(t, []byte("include:example.net"), r.Strings[1])
}

func TestTXT_StringOverrunsWindow(t *testing.T) {
	rdata := []byte{10, 'a', 'b'} // declares 10 bytes, has 2
	off := 0
	_, err := ParseTXTRData(rdata, &off, len(rdata))
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestIPRecord_LengthMustMatchType(t *testing.T) {
	v4 := []byte{1, 2, 3, 4}
	v6 := make([]byte, 16)

	off := 0
	_, err := ParseIPRData(v6, &off, len(v6), TypeA)
	assert.ErrorIs(t, err, ErrDNSError, "16-byte A is malformed, not an AAAA")

	off = 0
	_, err = ParseIPRData(v4, &off, len(v4), TypeAAAA)
	assert.ErrorIs(t, err, ErrDNSError, "4-byte AAAA is malformed, not an A")

	off = 0
	_, err = ParseIPRData([]byte{1, 2, 3}, &off, 3, TypeA)
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestMX_TooShort(t *testing.T) {
	msg := []byte{0, 10} // preference only, no exchange
	off := 0
	_, err := ParseMXRData(msg, &off, 0, len(msg))
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestSRV_TooShort(t *testing.T) {
	msg := []byte{0, 1, 0, 2} // missing port and target
	off := 0
	_, err := ParseSRVRData(msg, &off, 0, len(msg))
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestSOA_TooShort(t *testing.T) {
	// Two root names, then only 4 of the 20 fixed bytes.
	msg := []byte{0, 0, 0, 0, 0, 1}
	off := 0
	_, err := ParseSOARData(msg, &off, 0, len(msg))
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestCAA_TagOverrun(t *testing.T) {
	msg := []byte{0, 200, 'i'} // tag length 200 with 1 byte present
	off := 0
	_, err := ParseCAARData(msg, &off, len(msg))
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestOPT_TruncatedOption(t *testing.T) {
	msg := []byte{0, 10, 0, 8, 1, 2} // option declares 8 data bytes, has 2
	off := 0
	_, err := ParseOPTRData(msg, &off, len(msg))
	assert.ErrorIs(t, err, ErrDNSError)
}

func TestOPT_HeaderFieldOverload(t *testing.T) {
	// CLASS carries the payload size and TTL the extended rcode/version/DO
	// block; Header/SetHeader must translate both directions exactly.
	opt := &OPTRecord{UDPPayloadSize: 4096, ExtendedRCode: 0x12, Version: 0, DNSSECOk: true}
	h := opt.Header()
	assert.Equal(t, uint16(4096), h.Class)
	assert.Equal(t, uint32(0x12)<<24|uint32(1)<<15, h.TTL)

	var back OPTRecord
	back.SetHeader(h)
	assert.Equal(t, *opt, back)
}

func TestAdvertisedUDPSize(t *testing.T) {
	noEDNS := Packet{}
	assert.Equal(t, DefaultUDPPayloadSize, AdvertisedUDPSize(noEDNS))

	withEDNS := Packet{Additionals: []Record{NewOPTRecord(1232, false)}}
	assert.Equal(t, 1232, AdvertisedUDPSize(withEDNS))

	// Sizes below 512 round up per RFC 6891 §6.2.3.
	tiny := Packet{Additionals: []Record{&OPTRecord{UDPPayloadSize: 100}}}
	assert.Equal(t, DefaultUDPPayloadSize, AdvertisedUDPSize(tiny))
}

func TestNameRecord_CompressedTarget(t *testing.T) {
	// A CNAME whose RDATA is a pointer back into the message: the RDLENGTH
	// is the pointer's two bytes, and the decoded target is the earlier name.
	msg := []byte{
		7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0, // offset 0: example.com
		0, 0, 0, 0, 0, // padding to keep offsets distinct
		3, 'w', 'w', 'w', 0, // offset 18: "www" (owner, unused here)
		0xC0, 0x00, // offset 23: pointer to example.com
	}
	off := 23
	r, err := ParseNameRData(msg, &off, 23, 2, TypeCNAME)
	require.NoError(t, err)
	assert.Equal(t, "example.com", r.Target)
}
