package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTrace separates trace digests from any other hash in the system.
const DomainTrace = "simkit/trace/v1"

// Digest returns a content hash of events: SHA-256 over the domain, a null
// separator, and the canonical JSON of the trace. Two runs behaved the
// same iff their digests match.
func Digest(events []Event) (string, error) {
	data, err := MarshalEvents(events)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(DomainTrace))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
