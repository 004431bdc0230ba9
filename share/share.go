// Package share implements additive secret shares and their aggregation,
// the simulator's placeholder for a real secure-aggregation scheme. A
// Share carries a value, a count of how many contributor shares have
// been folded into it, and an id used to detect duplicate aggregation
// paths. The id is a position-independent identifier, not a security
// primitive.
package share

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Share is one additive piece of a secret, or the fold of several.
type Share struct {
	Value float64
	Count int
	ID    string
}

// New creates a single contributor's share, identified by its sender
// address.
func New(value float64, sender int) Share {
	return Share{
		Value: value,
		Count: 1,
		ID:    strconv.Itoa(sender),
	}
}

// Aggregate folds a set of shares into one: the value is their sum, the
// count is the sum of their counts, and the id is a digest of the
// constituent ids. The ids are sorted before hashing, so the result is
// independent of fold order and reproducible across runs and machines.
func Aggregate(shares []Share) Share {
	if len(shares) == 0 {
		return Share{}
	}
	ids := make([]string, len(shares))
	var value float64
	count := 0
	for i, s := range shares {
		ids[i] = s.ID
		value += s.Value
		count += s.Count
	}
	sort.Strings(ids)
	digest := sha256.Sum256([]byte(strings.Join(ids, ",")))
	return Share{
		Value: value,
		Count: count,
		ID:    hex.EncodeToString(digest[:]),
	}
}
