package dedup

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// MakeUID derives a stable identifier for an article from its title and
// link. The same story re-fetched across polls hashes to the same UID.
func MakeUID(title, link string) string {
	h := sha1.Sum([]byte(title + "|" + link))
	return hex.EncodeToString(h[:])
}

// Store answers "have we seen this article before?" and remembers it if not.
type Store interface {
	// Seen returns true if uid was already recorded; otherwise it records
	// uid and returns false. The check and the record are one atomic step.
	Seen(ctx context.Context, uid string) (bool, error)
}
