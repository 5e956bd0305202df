package dns

import (
	"fmt"

	"github.com/dugdns/dug/internal/helpers"
)

// Allocation caps for incoming DNS messages. Section counts are attacker
// controlled, so initial allocations are bounded by these rather than by the
// declared counts; the counts themselves are still honored exactly and a
// count the bytes cannot satisfy is a parse error.
const (
	MaxIncomingDNSMessageSize = 65535 // Absolute cap (TCP length prefix is 16 bits)
	maxPreallocQuestions      = 4
	maxPreallocRRPerSection   = 64
)

// Packet represents a complete DNS message (RFC 1035 Section 4.1).
//
// DNS messages are composed of five sections:
//   - Header: Transaction ID, flags, section counts
//   - Questions: What is being asked (this engine always sends exactly one)
//   - Answers: Resource records answering the question
//   - Authorities: Name servers authoritative for the domain
//   - Additionals: Extra records (EDNS OPT, glue A records for NS, ...)
//
// Record order within a section is server-asserted (CNAME chains) and is
// preserved through decode and encode. A Packet is built fresh per exchange
// and never mutated after decode.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// NewQuery builds a recursion-desired query packet with a single question.
// The transaction ID is caller-supplied; see lookup.TxIDSource.
func NewQuery(id uint16, q Question) Packet {
	return Packet{
		Header:    Header{ID: id, Flags: RDFlag},
		Questions: []Question{q},
	}
}

// Marshal serializes the packet to DNS wire format (big-endian).
// Section counts in the emitted header always equal the actual number of
// entries in each section, regardless of what p.Header declares.
func (p Packet) Marshal() ([]byte, error) {
	h := Header{
		ID:      p.Header.ID,
		Flags:   p.Header.Flags,
		QDCount: helpers.ClampIntToUint16(len(p.Questions)),
		ANCount: helpers.ClampIntToUint16(len(p.Answers)),
		NSCount: helpers.ClampIntToUint16(len(p.Authorities)),
		ARCount: helpers.ClampIntToUint16(len(p.Additionals)),
	}

	// Estimate capacity: header(12) + question(~50) + records(~100 each)
	estimatedSize := HeaderSize + len(p.Questions)*50 + (len(p.Answers)+len(p.Authorities)+len(p.Additionals))*100
	out := make([]byte, 0, estimatedSize)
	out = append(out, h.Marshal()...)

	for _, q := range p.Questions {
		qb, err := q.Marshal()
		if err != nil {
			return nil, err
		}
		out = append(out, qb...)
	}

	// Marshal answers, authorities, and additionals
	if err := appendRecords(&out, p.Answers); err != nil {
		return nil, err
	}
	if err := appendRecords(&out, p.Authorities); err != nil {
		return nil, err
	}
	if err := appendRecords(&out, p.Additionals); err != nil {
		return nil, err
	}

	return out, nil
}

// appendRecords marshals and appends records to the output buffer.
func appendRecords(out *[]byte, records []Record) error {
	for _, r := range records {
		b, err := MarshalRecord(r)
		if err != nil {
			return err
		}
		*out = append(*out, b...)
	}
	return nil
}

// ParsePacket parses a complete DNS message from wire format.
//
// Parsing is strict: every section must contain exactly as many entries as
// the header declares, and no bytes may remain after the last declared
// record. Both conditions fail with an ErrDNSError-wrapped error -- a count
// the bytes cannot satisfy indicates either a buggy server or an attacker,
// and silently returning a shortened section would hide both.
func ParsePacket(msg []byte) (Packet, error) {
	if len(msg) > MaxIncomingDNSMessageSize {
		return Packet{}, fmt.Errorf("%w: message too large (%d bytes)", ErrDNSError, len(msg))
	}
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Packet{}, err
	}

	p := Packet{Header: h}

	p.Questions = make([]Question, 0, min(int(h.QDCount), maxPreallocQuestions))
	for i := uint16(0); i < h.QDCount; i++ {
		q, err := ParseQuestion(msg, &off)
		if err != nil {
			return Packet{}, err
		}
		p.Questions = append(p.Questions, q)
	}
	if p.Answers, err = parseSection(msg, &off, h.ANCount); err != nil {
		return Packet{}, err
	}
	if p.Authorities, err = parseSection(msg, &off, h.NSCount); err != nil {
		return Packet{}, err
	}
	if p.Additionals, err = parseSection(msg, &off, h.ARCount); err != nil {
		return Packet{}, err
	}

	if off != len(msg) {
		return Packet{}, fmt.Errorf("%w: %d trailing bytes after declared sections", ErrDNSError, len(msg)-off)
	}
	return p, nil
}

// parseSection parses count records starting at *off.
func parseSection(msg []byte, off *int, count uint16) ([]Record, error) {
	if count == 0 {
		return nil, nil
	}
	records := make([]Record, 0, min(int(count), maxPreallocRRPerSection))
	for i := uint16(0); i < count; i++ {
		r, err := ParseRecord(msg, off)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
