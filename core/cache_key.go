package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// KeyBuilder builds memoization keys from explanation request fields
type KeyBuilder struct{}

// NewKeyBuilder creates a new key builder
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{}
}

// Build creates a memoization key from the fields that determine the
// explanation. The key is a SHA256 hash of: sql + challenge id + title +
// grade status. The free-text description is deliberately excluded: it is
// prompt garnish, not key material. Each field hashes as a labeled,
// length-prefixed segment, so absent optional fields are a stable
// zero-length sentinel and no field value can forge a neighboring segment.
func (b *KeyBuilder) Build(sql, challengeID, title, gradeStatus string) string {
	h := sha256.New()

	writeSegment(h, "sql", sql)
	writeSegment(h, "challenge", challengeID)
	writeSegment(h, "title", title)
	writeSegment(h, "grade", gradeStatus)

	return hex.EncodeToString(h.Sum(nil))
}

// writeSegment writes a label, the value length and the value bytes. The
// length prefix keeps the encoding injective under values that embed
// segment labels.
func writeSegment(h hash.Hash, label, value string) {
	fmt.Fprintf(h, "%s:%d:", label, len(value)) //nolint:errcheck
	h.Write([]byte(value))
}

// BuildCacheKey is a convenience function that builds a memoization key
func BuildCacheKey(sql, challengeID, title, gradeStatus string) string {
	return NewKeyBuilder().Build(sql, challengeID, title, gradeStatus)
}
