package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// HashStrings returns the hex SHA256 of parts, each terminated by a newline, so
// ("ab", "c") and ("a", "bc") hash differently.
func HashStrings(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashSet hashes parts without regard to their order.
func HashSet(parts ...string) string {
	sorted := append([]string(nil), parts...)
	sort.Strings(sorted)
	return HashStrings(sorted...)
}

// Short truncates a hash for log lines.
func Short(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
