package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ─── Enforcement Artifacts ──────────────────────────────────────────────────

// Notice is the generated legal demand text, bound to one permit snapshot
// and one generation instant. Immutable once created.
type Notice struct {
	PermitID    string    `json:"permit_id"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"` // "template" or the drafting provider name
}

// SHA256 returns the hex digest of the notice text.
func (n Notice) SHA256() string {
	return SHA256Hex([]byte(n.Text))
}

// Proof asserts the content and generation time of a notice. It is a local
// integrity fingerprint: the digest proves the notice existed in exactly
// this form when the nonce was drawn. It does not prove anything to a third
// party; an external timestamping authority would slot in behind the same
// shape with a different Provider.
type Proof struct {
	Digest      string    `json:"digest"`
	Algorithm   string    `json:"algorithm"`
	Nonce       string    `json:"nonce"`
	GeneratedAt time.Time `json:"generated_at"`
	Provider    string    `json:"provider"`
}

// DigestPrefix returns the short digest form used in listings.
func (p Proof) DigestPrefix() string {
	return digestPrefix(p.Digest)
}

// EnforcementRecord is one completed enforcement action as stored in the
// ledger. Records are written exactly once per completed cycle and never
// mutated afterward.
//
// Seq, PrevHash and EntryHash are chain fields owned by the ledger; callers
// submit records with all three zero and receive them filled in.
type EnforcementRecord struct {
	Seq           uint64    `json:"seq"`
	CycleID       string    `json:"cycle_id"`
	PermitID      string    `json:"permit_id"`
	Address       string    `json:"address"`
	CompletedAt   time.Time `json:"completed_at"`
	NoticeSHA256  string    `json:"notice_sha256"`
	ProofDigest   string    `json:"proof_digest"`
	ProofProvider string    `json:"proof_provider"`
	PrevHash      string    `json:"prev_hash"`
	EntryHash     string    `json:"entry_hash"`
}

// DigestPrefix returns the short form of the proof digest for listings.
func (r EnforcementRecord) DigestPrefix() string {
	return digestPrefix(r.ProofDigest)
}

// EnforcementPackage bundles everything a completed cycle hands to the
// document renderer and back to the operator.
type EnforcementPackage struct {
	Permit Permit            `json:"permit"`
	Notice Notice            `json:"notice"`
	Proof  Proof             `json:"proof"`
	Record EnforcementRecord `json:"record"`
}

// PhaseEvent is one edge of an enforcement cycle, published to progress
// observers as the pipeline advances.
type PhaseEvent struct {
	CycleID  string    `json:"cycle_id"`
	PermitID string    `json:"permit_id"`
	Phase    Phase     `json:"phase"`
	Message  string    `json:"message,omitempty"`
	At       time.Time `json:"at"`
}

// ─── Utilities ──────────────────────────────────────────────────────────────

// SHA256Hex computes SHA-256 hash and returns hex string.
func SHA256Hex(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func digestPrefix(digest string) string {
	if len(digest) <= 12 {
		return digest
	}
	return digest[:12]
}
