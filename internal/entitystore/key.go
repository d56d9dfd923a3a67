package entitystore

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentKey derives the content-addressed key of a record from its tags and
// its body. Engines share this so the same submission always maps to the
// same key, which is what turns an accidental double-write into
// ErrAlreadyExists instead of a second record.
func ContentKey(attrs Attributes, payload []byte) string {
	h := sha256.New()
	for _, attr := range attrs {
		h.Write([]byte(attr.Name))
		h.Write([]byte{0})
		h.Write([]byte(attr.Value))
		h.Write([]byte{0})
	}
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
