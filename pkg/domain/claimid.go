package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	dErrors "canopy/pkg/domain-errors"
)

// ClaimID is the content-derived identifier of an impact claim: the
// lowercase-hex SHA-256 of the claim's defining fields. IDs are never
// assigned sequentially.
type ClaimID string

// DeriveClaimID computes the identifier for a submission.
//
// The digest input is a length-prefixed concatenation, in order:
//
//	        field        encoding
//	1+ 2:   profileRef   uint32 big-endian byte length, then raw bytes
//	3 + 4:  category     uint32 big-endian byte length, then raw bytes
//	5:      submittedAt  int64 big-endian Unix nanoseconds (8 bytes)
//	6 + 7:  submitter    uint32 big-endian byte length, then raw bytes
//	8:      nonce        raw 16 bytes
//
// The nonce is generated per submission, so two submissions by the same
// submitter for the same category in the same nanosecond still derive
// distinct identifiers. Length prefixes keep adjacent variable-length fields
// from aliasing one another.
func DeriveClaimID(profile ProfileRef, category Category, submittedAt time.Time, submitter Identity, nonce uuid.UUID) ClaimID {
	h := sha256.New()

	writeField := func(s string) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}

	writeField(string(profile))
	writeField(string(category))

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(submittedAt.UnixNano()))
	h.Write(ts[:])

	writeField(string(submitter))
	h.Write(nonce[:])

	return ClaimID(hex.EncodeToString(h.Sum(nil)))
}

// ParseClaimID validates an externally supplied claim identifier.
func ParseClaimID(s string) (ClaimID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "claim id cannot be empty")
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != sha256.Size {
		return "", dErrors.New(dErrors.CodeInvalidInput, "claim id must be a 64-character hex digest")
	}
	// Re-encode so lookups are insensitive to the caller's hex casing.
	return ClaimID(hex.EncodeToString(raw)), nil
}

func (id ClaimID) String() string { return string(id) }
