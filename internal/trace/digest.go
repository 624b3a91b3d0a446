package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/erikrandall/csla/internal/record"
)

// DomainTrace prefixes trace digests. The version suffix allows the event
// encoding to change without colliding with older digests.
const DomainTrace = "filterview/trace/v1"

// Digest computes a content-addressed identity for a trace:
// SHA256(DomainTrace + 0x00 + one canonical JSON line per event).
//
// Run ids are excluded, so two runs that produced the same notifications
// in the same order share a digest.
func Digest(events []Event) (string, error) {
	h := sha256.New()
	h.Write([]byte(DomainTrace))
	h.Write([]byte{0x00})

	for i, e := range events {
		line, err := record.MarshalCanonical(map[string]any{
			"seq":       e.Seq,
			"origin":    e.Origin,
			"kind":      e.Kind,
			"index":     e.Index,
			"old_index": e.OldIndex,
			"field":     e.Field,
			"len":       e.Len,
		})
		if err != nil {
			return "", fmt.Errorf("event %d: %w", i, err)
		}
		h.Write(line)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
