package utils

import (
	"fmt"
	"hash/fnv"
	"strings"
)

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// StableID derives an identifier that is the same for the same inputs.
func StableID(prefix string, parts ...string) string {
	return fmt.Sprintf("%s_%016x", prefix, HashStringToUint64(strings.Join(parts, "\x1f")))
}
