package dns

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Wire-format limits for domain names (RFC 1035 Section 2.3.4).
const (
	MaxLabelLength = 63  // Maximum bytes in a single label
	MaxNameLength  = 255 // Maximum encoded name length, including length octets
)

// NormalizeName returns a lowercase DNS name without trailing dots.
// DNS domain names are case-insensitive per RFC 1035 Section 3.1; this form
// is used for question comparisons (RFC 4343).
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(name, "."))
}

// EqualNames compares two DNS names case-insensitively, ignoring trailing dots.
func EqualNames(a, b string) bool {
	return strings.EqualFold(strings.TrimSuffix(a, "."), strings.TrimSuffix(b, "."))
}

// EncodeName encodes a domain name to DNS wire format (RFC 1035 Section 3.1).
//
// DNS names are encoded as a sequence of labels, where each label is:
//   - 1 byte: length (0-63)
//   - N bytes: label characters
//
// The name is terminated by a zero-length label (single 0x00 byte).
//
// Example: "www.example.com" encodes as:
//
//	[3]www[7]example[3]com[0]
//	0x03 'w' 'w' 'w' 0x07 'e' 'x' 'a' 'm' 'p' 'l' 'e' 0x03 'c' 'o' 'm' 0x00
//
// Constraints:
//   - Each label max 63 bytes
//   - Total encoded name max 255 bytes
//   - ASCII only (no IDN/punycode handled here)
//
// Violating a length constraint is a deterministic error, never a silent
// truncation. This implementation does not emit compression pointers; queries
// carry a single name and responses are decoded, not re-encoded.
//
// Both "" and "." denote the root name and encode to the single terminating
// zero octet; DecodeName returns "" for root, so decoded root-owned records
// re-encode cleanly.
func EncodeName(domain string) ([]byte, error) {
	domain = trimDot(domain)
	if domain == "" {
		return []byte{0}, nil // Root domain
	}

	out := make([]byte, 0, len(domain)+2)
	labelStart := 0
	for i := 0; i <= len(domain); i++ {
		if i == len(domain) || domain[i] == '.' {
			if i == labelStart {
				return nil, fmt.Errorf("%w: invalid domain name (empty label): %q", ErrDNSError, domain)
			}
			label := domain[labelStart:i]

			// Validate ASCII
			for j := 0; j < len(label); j++ {
				if label[j] > 0x7F {
					return nil, fmt.Errorf("%w: domain name must be ASCII", ErrDNSError)
				}
			}

			if len(label) > MaxLabelLength {
				return nil, fmt.Errorf("%w: DNS label too long (%d > %d): %q", ErrDNSError, len(label), MaxLabelLength, label)
			}

			out = append(out, byte(len(label)))
			out = append(out, label...)
			labelStart = i + 1
		}
	}
	out = append(out, 0) // Terminating zero-length label

	if len(out) > MaxNameLength {
		return nil, fmt.Errorf("%w: encoded domain name too long (%d > %d)", ErrDNSError, len(out), MaxNameLength)
	}
	return out, nil
}

// DecodeName decodes a possibly-compressed DNS name from wire format.
//
// DNS name compression (RFC 1035 Section 4.1.4) uses pointers to reduce
// message size. A compression pointer is identified by the two high bits
// of a label length byte being set (11xxxxxx pattern = 0xC0).
//
// The pointer value is a 14-bit offset from the start of the message:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	| 1  1|                OFFSET                   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//
// Pointers may only reference strictly earlier offsets, and each pointer in a
// chain must target a strictly smaller offset than the previous one. That
// single invariant makes loops and forward references impossible and bounds
// decompression to one backward pass, so no visited-set is needed. The
// 255-byte encoded-name cap is enforced while following pointers, bounding
// work even under pathological compression chains.
//
// This function reads from msg starting at *off, advancing *off past the
// encoded name as it appears in place (including any compression pointer
// bytes). Returns an ASCII, dot-separated name without a trailing dot.
func DecodeName(msg []byte, off *int) (string, error) {
	if *off < 0 || *off >= len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF while decoding DNS name", ErrDNSError)
	}

	// Pre-allocate for typical domain depth (e.g., www.example.com = 3 labels)
	labels := make([]string, 0, 6)
	pos := *off
	jumped := false
	limit := len(msg) // Each pointer target must be strictly below this
	encodedLen := 1   // Terminating zero octet

	for {
		if pos >= len(msg) {
			return "", fmt.Errorf("%w: unexpected EOF while decoding DNS name", ErrDNSError)
		}
		labelLen := msg[pos]

		// Zero-length label marks end of name
		if labelLen == 0 {
			pos++
			break
		}

		// Compression pointer (high 2 bits = 11)
		if isCompressionPointer(labelLen) {
			target, err := readPointerTarget(msg, pos)
			if err != nil {
				return "", err
			}
			if target >= pos || target >= limit {
				return "", fmt.Errorf("%w: DNS compression pointer not strictly backward (offset %d at %d)", ErrDNSError, target, pos)
			}
			if !jumped {
				*off = pos + 2
				jumped = true
			}
			limit = target
			pos = target
			continue
		}

		// Reserved label types (01xxxxxx and 10xxxxxx) per RFC 1035
		if hasReservedBits(labelLen) {
			return "", fmt.Errorf("%w: invalid DNS label length (reserved high bits set)", ErrDNSError)
		}

		encodedLen += 1 + int(labelLen)
		if encodedLen > MaxNameLength {
			return "", fmt.Errorf("%w: decompressed DNS name too long (> %d bytes)", ErrDNSError, MaxNameLength)
		}

		label, err := readLabel(msg, pos+1, int(labelLen))
		if err != nil {
			return "", err
		}
		labels = append(labels, label)
		pos += 1 + int(labelLen)
	}

	if !jumped {
		*off = pos
	}
	return joinLabels(labels), nil
}

// isCompressionPointer checks if the label length byte indicates a compression
// pointer. Compression pointers have the two high bits set (11xxxxxx = 0xC0 mask).
func isCompressionPointer(b byte) bool {
	return (b & 0xC0) == 0xC0
}

// hasReservedBits checks if the label uses reserved encoding (01xxxxxx or 10xxxxxx).
// These patterns are reserved for future use per RFC 1035.
func hasReservedBits(b byte) bool {
	return (b & 0xC0) != 0
}

// readPointerTarget extracts the 14-bit offset of a compression pointer whose
// first byte sits at pos.
func readPointerTarget(msg []byte, pos int) (int, error) {
	if pos+2 > len(msg) {
		return 0, fmt.Errorf("%w: unexpected EOF while decoding compression pointer", ErrDNSError)
	}
	target := int(binary.BigEndian.Uint16(msg[pos:pos+2]) & 0x3FFF)
	if target >= len(msg) {
		return 0, fmt.Errorf("%w: DNS compression pointer out of bounds", ErrDNSError)
	}
	return target, nil
}

// readLabel reads a single DNS label of the given length starting at pos.
func readLabel(msg []byte, pos, length int) (string, error) {
	if pos+length > len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF while reading DNS label", ErrDNSError)
	}
	label := msg[pos : pos+length]

	// Validate ASCII
	for _, b := range label {
		if b > 0x7F {
			return "", fmt.Errorf("%w: decoded DNS name was not ASCII", ErrDNSError)
		}
	}
	return string(label), nil
}

// trimDot removes all trailing dots from a string.
func trimDot(s string) string {
	for len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// joinLabels concatenates DNS labels with dots.
// Uses strings.Builder with size pre-allocation for efficiency.
func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	if len(labels) == 1 {
		return labels[0]
	}
	// Pre-calculate size to minimize Builder allocations
	totalSize := len(labels) - 1 // dots
	for _, label := range labels {
		totalSize += len(label)
	}
	var b strings.Builder
	b.Grow(totalSize)
	b.WriteString(labels[0])
	for i := 1; i < len(labels); i++ {
		b.WriteByte('.')
		b.WriteString(labels[i])
	}
	return b.String()
}
