package letter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/statute"
)

const draftSystemPrompt = `You draft formal statutory demand letters on behalf of permit applicants whose applications have exceeded the legally mandated review window. Write in plain, firm, professional legal register. Do not invent facts, statutes, dollar amounts or deadlines beyond those provided. Output only the letter text, no commentary.`

const draftUserPromptTemplate = `Draft a demand letter with exactly these facts:

Statute citation: %s
Permit application: #%s
Property address: %s
Statutory review limit: %d days
Days elapsed under review: %d
Refund demanded: %s (%s of permit fees)
Letter date: %s

The letter must quote the statute citation verbatim, reference the permit application number, demand the refund and either permit issuance or specific written cause for delay, and note that the letter has been cryptographically fingerprinted for integrity verification.`

// DraftComposer asks a language model to draft the demand letter. It sits
// behind the same LetterComposer seam as the template composer so the
// workflow never knows which one produced the text. Drafted output must
// still carry the permit id and the statute citation; anything else fails
// the cycle rather than notarize an unusable letter.
type DraftComposer struct {
	provider Provider
	profile  statute.Profile
}

// NewDraftComposer creates a model-backed composer.
func NewDraftComposer(provider Provider, profile statute.Profile) *DraftComposer {
	return &DraftComposer{provider: provider, profile: profile}
}

// Compose drafts the notice through the configured provider.
func (c *DraftComposer) Compose(ctx context.Context, p domain.Permit, now time.Time) (domain.Notice, error) {
	if err := requireFields(p, c.profile); err != nil {
		return domain.Notice{}, err
	}

	prompt := fmt.Sprintf(draftUserPromptTemplate,
		c.profile.Citation,
		p.ID,
		p.Address,
		p.StatuteLimitDays,
		p.DaysOpen,
		p.RefundOwed.String(),
		c.profile.RatePercent(),
		now.Format("January 02, 2006"),
	)

	resp, err := c.provider.Complete(ctx, &CompletionRequest{
		SystemPrompt: draftSystemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return domain.Notice{}, fmt.Errorf("draft demand letter: %w", err)
	}

	text := strings.TrimSpace(resp.Content)
	switch {
	case !strings.Contains(text, p.ID):
		return domain.Notice{}, fmt.Errorf("drafted letter for %s omits the permit id", p.ID)
	case !strings.Contains(text, c.profile.Citation):
		return domain.Notice{}, fmt.Errorf("drafted letter for %s omits the statute citation", p.ID)
	}

	return domain.Notice{
		PermitID:    p.ID,
		Text:        text,
		GeneratedAt: now,
		Source:      resp.Model,
	}, nil
}
