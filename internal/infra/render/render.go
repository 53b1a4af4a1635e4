// Package render produces the servable enforcement document from a
// completed cycle.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
)

const letterhead = "PERMIT SHERIFF ENFORCEMENT"

// TextRenderer emits the demand package as plain text: a letterhead, the
// notice body, and a proof footer a recipient can verify with any SHA-256
// tool.
type TextRenderer struct{}

// NewTextRenderer returns the plain-text document renderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render lays out the document. It refuses packages with no notice text or
// no proof; a demand letter never ships without its footer.
func (TextRenderer) Render(pkg domain.EnforcementPackage) ([]byte, error) {
	if strings.TrimSpace(pkg.Notice.Text) == "" {
		return nil, fmt.Errorf("%w: empty notice text", domain.ErrTemplateDataMissing)
	}
	if pkg.Proof.Digest == "" {
		return nil, fmt.Errorf("%w: package has no proof digest", domain.ErrProofGeneration)
	}

	var b strings.Builder
	b.WriteString(letterhead + "\n")
	b.WriteString(strings.Repeat("=", 70) + "\n\n")
	b.WriteString(strings.TrimSpace(pkg.Notice.Text))
	b.WriteString("\n\n")
	b.WriteString(strings.Repeat("-", 70) + "\n")
	fmt.Fprintf(&b, "CRYPTOGRAPHIC FINGERPRINT: %s\n", pkg.Proof.Digest)
	fmt.Fprintf(&b, "TIMESTAMP: %s\n", pkg.Proof.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "PROVIDER: %s\n", pkg.Proof.Provider)
	return []byte(b.String()), nil
}

// Filename is the download name offered for a permit's demand document.
func (TextRenderer) Filename(permitID string) string {
	return fmt.Sprintf("LEGAL_DEMAND_%s.txt", permitID)
}
