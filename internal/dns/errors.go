// Package dns implements the DNS wire format: message encoding and decoding,
// domain-name compression, and the resource-record model used by the lookup
// engine.
//
// Standards Compliance:
//
// This package implements DNS protocol features from the following RFCs:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core DNS protocol)
//   - RFC 1034: Domain Names - Concepts and Facilities (DNS concepts)
//   - RFC 2782: A DNS RR for specifying the location of services (SRV records)
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//   - RFC 6891: Extension Mechanisms for DNS (EDNS, OPT records)
//   - RFC 8659: DNS Certification Authority Authorization (CAA records)
//
// Type-Oriented Design:
//
// Each DNS record type is represented by an explicit type (IPRecord, MXRecord,
// SOARecord, etc.) rather than a generic struct. Record types this package does
// not model decode to OpaqueRecord carrying the raw RDATA bytes, so an unknown
// type is never a parse failure.
//
// Error Handling:
//
// Every malformed-wire condition wraps ErrDNSError, so callers can separate
// "the bytes were bad" from network-level failures with errors.Is. All errors
// are wrapped with context using fmt.Errorf("...: %w", err).
package dns

import "errors"

var (
	// ErrDNSError is the sentinel error for malformed wire data: truncated
	// buffers, invalid compression pointers, length violations, and section
	// counts that disagree with the bytes actually present.
	// Wrap this with fmt.Errorf("context: %w", ErrDNSError) to add context.
	ErrDNSError = errors.New("dns wire error")
)
