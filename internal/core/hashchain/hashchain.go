// Package hashchain implements the pure functions that link votes into a
// per-poll hash chain: a versioned, canonical vote digest and a one-way
// receipt code derived from it. The encoding is frozen per version so stored
// chains stay re-verifiable forever; a new field order or precision means a
// new version, never a silent redefinition.
package hashchain

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/communitydesk/ballot/internal/core/domain"
)

// VersionV1: SHA-256 over "v1|<voter-or->|<option>|<cast-at>|<prev-or->"
// where cast-at is UTC RFC3339 with fixed microsecond precision and "-" is
// the sentinel for an absent voter identity or predecessor.
const VersionV1 = 1

const (
	v1Prefix   = "v1"
	sentinel   = "-"
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"

	receiptDomain = "ballot.receipt.v1"
)

var ErrUnknownVersion = fmt.Errorf("hashchain: unknown hash version")

// Fields is the fixed, explicitly ordered tuple a vote hash is computed
// from. CastAt must be the storage-normalized timestamp read back from the
// ledger, not a wall-clock value captured at call time.
type Fields struct {
	VoterKey string // empty for anonymous polls
	OptionID string
	CastAt   time.Time
	PrevHash string // empty for the first vote in a poll
}

// ComputeVoteHash returns the hex-encoded digest of the canonical encoding
// of f under the given version.
func ComputeVoteHash(version int, f Fields) (string, error) {
	if version != VersionV1 {
		return "", fmt.Errorf("%w: %d", ErrUnknownVersion, version)
	}

	voter := f.VoterKey
	if voter == "" {
		voter = sentinel
	}
	prev := f.PrevHash
	if prev == "" {
		prev = sentinel
	}

	canonical := strings.Join([]string{
		v1Prefix,
		voter,
		f.OptionID,
		CanonicalTime(f.CastAt).Format(timeLayout),
		prev,
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

// HashVote recomputes the hash of a stored vote from its own fields. Used by
// the ledger when finalizing an append and by the auditor when re-verifying.
func HashVote(v *domain.Vote) (string, error) {
	f := Fields{OptionID: v.OptionID.String(), CastAt: v.CastAt}
	if v.VoterID != nil {
		f.VoterKey = v.VoterID.String()
	}
	if v.PrevHash != nil {
		f.PrevHash = *v.PrevHash
	}
	return ComputeVoteHash(v.HashVersion, f)
}

// DeriveReceiptCode maps a vote hash to the public receipt code handed to
// the voter. The transform is one-way (a domain-separated second digest) and
// the code never equals the hash, so the internal hash is not leaked
// verbatim. Format: four dash-separated groups of four base32 characters.
func DeriveReceiptCode(voteHash string) string {
	sum := sha256.Sum256([]byte(receiptDomain + "|" + voteHash))
	raw := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum[:10])
	return strings.Join([]string{raw[0:4], raw[4:8], raw[8:12], raw[12:16]}, "-")
}

// CanonicalTime normalizes a timestamp to the precision the ledger stores
// (microseconds) in UTC, so hashing and re-hashing agree byte for byte.
func CanonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
