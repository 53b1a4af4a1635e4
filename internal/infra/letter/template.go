// Package letter composes statutory demand notices for violating permits.
// The template composer is the deterministic default; a model-drafted
// composer sits behind the same interface for live deployments.
package letter

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/statute"
)

// demandTemplate is the statutory demand letter. The closing sentence
// describes the proof honestly as a local integrity fingerprint; it makes
// no external timestamping claim.
var demandTemplate = template.Must(template.New("demand").Parse(`DEMAND FOR REMEDY PURSUANT TO {{.Citation}}

TO: Building Official, City Permitting Department
RE: Permit Application #{{.PermitID}}
DATE: {{.Date}}

NOTICE OF STATUTORY VIOLATION

This letter serves as formal notice that the review period for Permit #{{.PermitID}} at {{.Address}} has exceeded the mandatory statutory limit of {{.LimitDays}} days.

Current Status: {{.DaysOpen}} days elapsed.

Pursuant to state law, we hereby demand:
1. Immediate refund of {{.Refund}} ({{.RatePercent}} of permit fees).
2. Immediate issuance of the permit or specific written cause for delay.

This notice has been cryptographically fingerprinted for integrity verification. Failure to respond may result in legal escalation.

Sincerely,
Permit Sheriff Enforcement Agent
`))

type demandData struct {
	Citation    string
	PermitID    string
	Address     string
	Date        string
	LimitDays   int
	DaysOpen    int
	Refund      string
	RatePercent string
}

// TemplateComposer renders the demand notice from the fixed statutory
// template. Output is byte-identical for identical permit and instant.
type TemplateComposer struct {
	profile statute.Profile
}

// NewTemplateComposer creates a composer bound to a statute profile.
func NewTemplateComposer(profile statute.Profile) *TemplateComposer {
	return &TemplateComposer{profile: profile}
}

// Compose renders the notice for a violating permit. Required fields are
// checked again here even though upstream validation already ran: a blank
// letter must never reach notarization.
func (c *TemplateComposer) Compose(ctx context.Context, p domain.Permit, now time.Time) (domain.Notice, error) {
	if err := ctx.Err(); err != nil {
		return domain.Notice{}, err
	}
	if err := requireFields(p, c.profile); err != nil {
		return domain.Notice{}, err
	}
	data := demandData{
		Citation:    c.profile.Citation,
		PermitID:    p.ID,
		Address:     p.Address,
		Date:        now.Format("January 02, 2006"),
		LimitDays:   p.StatuteLimitDays,
		DaysOpen:    p.DaysOpen,
		Refund:      p.RefundOwed.String(),
		RatePercent: c.profile.RatePercent(),
	}
	var buf bytes.Buffer
	if err := demandTemplate.Execute(&buf, data); err != nil {
		return domain.Notice{}, fmt.Errorf("render demand letter: %w", err)
	}
	return domain.Notice{
		PermitID:    p.ID,
		Text:        buf.String(),
		GeneratedAt: now,
		Source:      "template",
	}, nil
}

func requireFields(p domain.Permit, profile statute.Profile) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: permit id", domain.ErrTemplateDataMissing)
	case p.Address == "":
		return fmt.Errorf("%w: address for permit %s", domain.ErrTemplateDataMissing, p.ID)
	case p.StatuteLimitDays <= 0:
		return fmt.Errorf("%w: statute limit for permit %s", domain.ErrTemplateDataMissing, p.ID)
	case profile.Citation == "":
		return fmt.Errorf("%w: statute citation", domain.ErrTemplateDataMissing)
	}
	return nil
}
