package lookup

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// TxIDSource produces transaction IDs for outgoing queries. Implementations
// must be safe for concurrent use and must not produce correlated or
// predictable IDs across concurrent callers; the ID is the only defense the
// wire format offers against off-path spoofing on UDP.
//
// The source is injectable so tests can supply deterministic IDs.
type TxIDSource interface {
	Next() (uint16, error)
}

// CryptoTxIDSource draws IDs from crypto/rand. The zero value is ready to
// use and safe for concurrent callers.
type CryptoTxIDSource struct{}

// Next returns a fresh random transaction ID.
func (CryptoTxIDSource) Next() (uint16, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("generate transaction ID: %w", err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}
