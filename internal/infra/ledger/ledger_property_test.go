package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Any edit to any stored entry breaks verification, regardless of which
// entry or which field was touched.
func TestChainTamperProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("any single-entry edit is detected", prop.ForAll(
		func(n, target, field int) bool {
			l := NewMemory()
			for i := 0; i < n; i++ {
				r := record(fmt.Sprintf("cycle-%d", i), fmt.Sprintf("PER-24-%03d", i))
				if _, err := l.Append(r); err != nil {
					return false
				}
			}
			idx := target % n
			switch field {
			case 0:
				l.records[idx].PermitID += "x"
			case 1:
				l.records[idx].NoticeSHA256 = "0" + l.records[idx].NoticeSHA256
			case 2:
				l.records[idx].ProofDigest += "f"
			case 3:
				l.records[idx].CompletedAt = l.records[idx].CompletedAt.Add(time.Second)
			}
			return l.Verify() != nil
		},
		gen.IntRange(1, 8),
		gen.IntRange(0, 7),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}

// Appending never invalidates the chain, and sequence numbers stay dense
// and ordered no matter how many cycles complete.
func TestChainExtensionProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("extension preserves a dense, verifiable chain", prop.ForAll(
		func(n int) bool {
			l := NewMemory()
			for i := 0; i < n; i++ {
				r := record(fmt.Sprintf("cycle-%d", i), fmt.Sprintf("PER-24-%03d", i))
				if _, err := l.Append(r); err != nil {
					return false
				}
				if err := l.Verify(); err != nil {
					return false
				}
			}
			records, err := l.List()
			if err != nil {
				return false
			}
			for i, r := range records {
				if r.Seq != uint64(i+1) {
					return false
				}
			}
			return len(records) == n
		},
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}
