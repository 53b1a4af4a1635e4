// Package notary produces integrity proofs for drafted notices. The local
// implementation is a salted content hash. It proves the notice existed in
// exactly this form when the nonce was drawn and nothing more; it is not an
// external timestamping service, and the provider label says so.
package notary

import (
	"context"
	"fmt"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

// Provider is the label recorded on every proof this notary issues.
const Provider = "local-sha256"

const algorithm = "sha256"

// LocalNotary hashes notice content salted with a caller-supplied nonce.
// Deterministic for identical content and nonce; any nonce change produces
// an unrelated digest.
type LocalNotary struct {
	clock func() time.Time
}

// NewLocalNotary creates a notary using the wall clock.
func NewLocalNotary() *LocalNotary {
	return &LocalNotary{clock: time.Now}
}

// WithClock fixes the notary's clock. Intended for tests.
func (n *LocalNotary) WithClock(clock func() time.Time) *LocalNotary {
	n.clock = clock
	return n
}

// Notarize digests the notice content concatenated with the nonce and
// returns the proof. Empty content or nonce means an upstream stage broke
// its contract; both are rejected rather than fingerprinting nothing.
func (n *LocalNotary) Notarize(ctx context.Context, noticeText, nonce string) (domain.Proof, error) {
	if err := ctx.Err(); err != nil {
		return domain.Proof{}, err
	}
	if noticeText == "" {
		return domain.Proof{}, fmt.Errorf("%w: empty notice content", domain.ErrProofGeneration)
	}
	if nonce == "" {
		return domain.Proof{}, fmt.Errorf("%w: empty nonce", domain.ErrProofGeneration)
	}

	return domain.Proof{
		Digest:      domain.SHA256Hex([]byte(noticeText + nonce)),
		Algorithm:   algorithm,
		Nonce:       nonce,
		GeneratedAt: n.clock(),
		Provider:    Provider,
	}, nil
}
