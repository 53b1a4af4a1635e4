package domain

import (
	"errors"
	"testing"
	"time"
)

// ─── Permit Classification Tests ────────────────────────────────────────────

func TestPermit_InViolation(t *testing.T) {
	tests := []struct {
		name  string
		days  int
		limit int
		want  bool
	}{
		{"well under the limit", 5, 10, false},
		{"exactly at the limit", 30, 30, false},
		{"one day over", 31, 30, true},
		{"far over", 45, 30, true},
		{"day zero", 0, 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Permit{DaysOpen: tt.days, StatuteLimitDays: tt.limit}
			if got := p.InViolation(); got != tt.want {
				t.Errorf("InViolation() with %d/%d days = %v, want %v", tt.days, tt.limit, got, tt.want)
			}
		})
	}
}

func TestPermit_Classify(t *testing.T) {
	tests := []struct {
		name  string
		days  int
		limit int
		want  Classification
	}{
		{"fresh application", 0, 30, Compliant},
		{"early in review", 5, 10, Compliant},
		{"exactly 80 percent stays compliant", 24, 30, Compliant},
		{"just past 80 percent", 25, 30, AtRisk},
		{"exactly at the limit is at risk, not violation", 30, 30, AtRisk},
		{"one day over the limit", 31, 30, Violation},
		{"residential overdue", 45, 30, Violation},
		{"commercial overdue", 62, 45, Violation},
		{"80 percent of a commercial window", 36, 45, Compliant},
		{"81 percent of a commercial window", 37, 45, AtRisk},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Permit{DaysOpen: tt.days, StatuteLimitDays: tt.limit}
			if got := p.Classify(); got != tt.want {
				t.Errorf("Classify() with %d/%d days = %q, want %q", tt.days, tt.limit, got, tt.want)
			}
		})
	}
}

func TestPermit_ClassifyAgreesWithInViolation(t *testing.T) {
	// The band and the boolean must never disagree, whatever the inputs.
	for days := 0; days <= 60; days++ {
		for limit := 1; limit <= 50; limit++ {
			p := Permit{DaysOpen: days, StatuteLimitDays: limit}
			gotBand := p.Classify() == Violation
			if gotBand != p.InViolation() {
				t.Fatalf("Classify/InViolation disagree at %d/%d days", days, limit)
			}
		}
	}
}

func TestPermit_ProximityRatio(t *testing.T) {
	p := Permit{DaysOpen: 45, StatuteLimitDays: 30}
	if got := p.ProximityRatio(); got != 1.5 {
		t.Errorf("ProximityRatio() = %v, want 1.5", got)
	}
}

func TestPermit_ProximityRatio_ZeroLimit(t *testing.T) {
	p := Permit{DaysOpen: 10}
	if got := p.ProximityRatio(); got != 0 {
		t.Errorf("ProximityRatio() with zero limit = %v, want 0", got)
	}
}

func TestPermit_Validate(t *testing.T) {
	valid := Permit{
		ID:               "MIA-24-001",
		Address:          "120 Ocean Dr, Miami",
		Type:             "Residential Renovation",
		Status:           "Under Review",
		SubmittedAt:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		StatuteLimitDays: 30,
		DaysOpen:         45,
		RefundOwed:       45000,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on valid permit = %v, want nil", err)
	}

	tests := []struct {
		name   string
		mutate func(p *Permit)
	}{
		{"empty id", func(p *Permit) { p.ID = "" }},
		{"empty address", func(p *Permit) { p.Address = "" }},
		{"zero statute limit", func(p *Permit) { p.StatuteLimitDays = 0 }},
		{"negative statute limit", func(p *Permit) { p.StatuteLimitDays = -30 }},
		{"negative days open", func(p *Permit) { p.DaysOpen = -1 }},
		{"negative refund", func(p *Permit) { p.RefundOwed = -100 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, ErrInvalidPermitData) {
				t.Errorf("Validate() = %v, want ErrInvalidPermitData", err)
			}
		})
	}
}

// ─── Money Tests ────────────────────────────────────────────────────────────

func TestCents_String(t *testing.T) {
	tests := []struct {
		cents Cents
		want  string
	}{
		{0, "$0.00"},
		{45000, "$450.00"},
		{120000, "$1,200.00"},
		{123456789, "$1,234,567.89"},
		{5, "$0.05"},
		{-45000, "-$450.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.cents.String(); got != tt.want {
				t.Errorf("Cents(%d).String() = %q, want %q", int64(tt.cents), got, tt.want)
			}
		})
	}
}

func TestParseUSD(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"$450.00", 45000},
		{"$1,200.00", 120000},
		{"$0.00", 0},
		{"0", 0},
		{"1200", 120000},
		{"45.5", 4550},
		{" $99.99 ", 9999},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUSD(tt.in)
			if err != nil {
				t.Fatalf("ParseUSD(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseUSD(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseUSD_Invalid(t *testing.T) {
	for _, in := range []string{"", "$", "abc", "1.005", "12.3.4"} {
		t.Run(in, func(t *testing.T) {
			if _, err := ParseUSD(in); err == nil {
				t.Errorf("ParseUSD(%q) = nil error, want error", in)
			}
		})
	}
}

// ─── Session State Machine Tests ────────────────────────────────────────────

func TestSession_InitialPhase(t *testing.T) {
	s := NewSession()
	if got := s.Phase(); got != PhaseIdle {
		t.Errorf("Phase() = %q, want %q", got, PhaseIdle)
	}
	if s.InFlight() {
		t.Error("InFlight() = true on fresh session, want false")
	}
}

func TestSession_SelectFromIdle(t *testing.T) {
	s := NewSession()
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got := s.Phase(); got != PhaseSelected {
		t.Errorf("Phase() = %q, want %q", got, PhaseSelected)
	}
	if got := s.SelectedID(); got != "MIA-24-001" {
		t.Errorf("SelectedID() = %q, want %q", got, "MIA-24-001")
	}
}

func TestSession_ReselectMovesTarget(t *testing.T) {
	s := NewSession()
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("first Select() error = %v", err)
	}
	if err := s.Select("JAX-24-882"); err != nil {
		t.Fatalf("second Select() error = %v", err)
	}
	if got := s.SelectedID(); got != "JAX-24-882" {
		t.Errorf("SelectedID() = %q, want %q", got, "JAX-24-882")
	}
	if got := s.Phase(); got != PhaseSelected {
		t.Errorf("Phase() = %q, want %q", got, PhaseSelected)
	}
}

func TestSession_SelectEmptyID(t *testing.T) {
	s := NewSession()
	if err := s.Select(""); !errors.Is(err, ErrPermitNotFound) {
		t.Errorf("Select(\"\") = %v, want ErrPermitNotFound", err)
	}
}

func TestSession_BeginHappyPath(t *testing.T) {
	s := NewSession()
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.Begin("MIA-24-001", "cycle-1"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := s.Phase(); got != PhaseTriggered {
		t.Errorf("Phase() = %q, want %q", got, PhaseTriggered)
	}
	if got := s.CycleID(); got != "cycle-1" {
		t.Errorf("CycleID() = %q, want %q", got, "cycle-1")
	}
	if !s.InFlight() {
		t.Error("InFlight() = false after Begin, want true")
	}
}

func TestSession_BeginStaleSelection(t *testing.T) {
	// A trigger fired for one permit while the selection has moved to
	// another must fail and leave the newer selection in place.
	s := NewSession()
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.Select("JAX-24-882"); err != nil {
		t.Fatalf("re-Select() error = %v", err)
	}
	err := s.Begin("MIA-24-001", "cycle-1")
	if !errors.Is(err, ErrStaleSelection) {
		t.Fatalf("Begin() = %v, want ErrStaleSelection", err)
	}
	if got := s.Phase(); got != PhaseSelected {
		t.Errorf("Phase() after stale trigger = %q, want %q", got, PhaseSelected)
	}
	if got := s.SelectedID(); got != "JAX-24-882" {
		t.Errorf("SelectedID() after stale trigger = %q, want %q", got, "JAX-24-882")
	}
	if got := s.CycleID(); got != "" {
		t.Errorf("CycleID() after stale trigger = %q, want empty", got)
	}
}

func TestSession_BeginWithoutSelection(t *testing.T) {
	s := NewSession()
	err := s.Begin("MIA-24-001", "cycle-1")
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("Begin() from Idle = %v, want TransitionError", err)
	}
	if te.From != PhaseIdle || te.To != PhaseTriggered {
		t.Errorf("TransitionError = %s -> %s, want IDLE -> TRIGGERED", te.From, te.To)
	}
}

func TestSession_FullCycle(t *testing.T) {
	s := NewSession()
	steps := []struct {
		name string
		run  func() error
	}{
		{"select", func() error { return s.Select("MIA-24-001") }},
		{"begin", func() error { return s.Begin("MIA-24-001", "cycle-1") }},
		{"advance to drafting", func() error { return s.Advance(PhaseDrafting) }},
		{"advance to notarizing", func() error { return s.Advance(PhaseNotarizing) }},
		{"complete", func() error { return s.Complete() }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
	}
	if got := s.Phase(); got != PhaseIdle {
		t.Errorf("Phase() after complete = %q, want %q", got, PhaseIdle)
	}
	if got := s.SelectedID(); got != "" {
		t.Errorf("SelectedID() after complete = %q, want empty", got)
	}
	if got := s.CycleID(); got != "" {
		t.Errorf("CycleID() after complete = %q, want empty", got)
	}
}

func TestSession_FailKeepsSelection(t *testing.T) {
	s := NewSession()
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.Begin("MIA-24-001", "cycle-1"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := s.Advance(PhaseDrafting); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if err := s.Fail(); err != nil {
		t.Fatalf("Fail() error = %v", err)
	}
	if got := s.Phase(); got != PhaseFailed {
		t.Errorf("Phase() = %q, want %q", got, PhaseFailed)
	}
	if got := s.SelectedID(); got != "MIA-24-001" {
		t.Errorf("SelectedID() after fail = %q, want kept", got)
	}
	if got := s.CycleID(); got != "" {
		t.Errorf("CycleID() after fail = %q, want cleared", got)
	}

	// Operator recovers by selecting again.
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() after fail = %v, want nil", err)
	}
	if got := s.Phase(); got != PhaseSelected {
		t.Errorf("Phase() after recovery = %q, want %q", got, PhaseSelected)
	}
}

func TestSession_SelectWhileInFlight(t *testing.T) {
	s := NewSession()
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.Begin("MIA-24-001", "cycle-1"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := s.Select("JAX-24-882"); !errors.Is(err, ErrEnforcementInProgress) {
		t.Errorf("Select() mid-cycle = %v, want ErrEnforcementInProgress", err)
	}
	if err := s.Begin("MIA-24-001", "cycle-2"); !errors.Is(err, ErrEnforcementInProgress) {
		t.Errorf("Begin() mid-cycle = %v, want ErrEnforcementInProgress", err)
	}
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	if err := s.Reset(); err != nil {
		t.Errorf("Reset() on idle session = %v, want nil", err)
	}

	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() from Selected = %v", err)
	}
	if got := s.Phase(); got != PhaseIdle {
		t.Errorf("Phase() after reset = %q, want %q", got, PhaseIdle)
	}
	if got := s.SelectedID(); got != "" {
		t.Errorf("SelectedID() after reset = %q, want empty", got)
	}
}

func TestSession_ResetWhileInFlight(t *testing.T) {
	s := NewSession()
	if err := s.Select("MIA-24-001"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.Begin("MIA-24-001", "cycle-1"); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := s.Reset(); !errors.Is(err, ErrEnforcementInProgress) {
		t.Errorf("Reset() mid-cycle = %v, want ErrEnforcementInProgress", err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Phase
		to   Phase
		want bool
	}{
		{PhaseIdle, PhaseSelected, true},
		{PhaseIdle, PhaseTriggered, false},
		{PhaseIdle, PhaseIdle, false},
		{PhaseSelected, PhaseSelected, true},
		{PhaseSelected, PhaseTriggered, true},
		{PhaseSelected, PhaseIdle, true},
		{PhaseSelected, PhaseDrafting, false},
		{PhaseTriggered, PhaseDrafting, true},
		{PhaseTriggered, PhaseFailed, true},
		{PhaseTriggered, PhaseCompleted, false},
		{PhaseDrafting, PhaseNotarizing, true},
		{PhaseDrafting, PhaseFailed, true},
		{PhaseNotarizing, PhaseCompleted, true},
		{PhaseNotarizing, PhaseFailed, true},
		{PhaseCompleted, PhaseIdle, true},
		{PhaseCompleted, PhaseSelected, false},
		{PhaseFailed, PhaseSelected, true},
		{PhaseFailed, PhaseIdle, true},
		{PhaseFailed, PhaseTriggered, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := &TransitionError{From: PhaseIdle, To: PhaseTriggered}
	want := "illegal session transition IDLE -> TRIGGERED"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// ─── Enforcement Artifact Tests ─────────────────────────────────────────────

func TestNotice_SHA256(t *testing.T) {
	n := Notice{Text: "hello"}
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got := n.SHA256(); got != want {
		t.Errorf("SHA256() = %q, want %q", got, want)
	}
}

func TestProof_DigestPrefix(t *testing.T) {
	p := Proof{Digest: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"}
	if got := p.DigestPrefix(); got != "2cf24dba5fb0" {
		t.Errorf("DigestPrefix() = %q, want %q", got, "2cf24dba5fb0")
	}
}

func TestProof_DigestPrefix_Short(t *testing.T) {
	p := Proof{Digest: "abc"}
	if got := p.DigestPrefix(); got != "abc" {
		t.Errorf("DigestPrefix() = %q, want %q", got, "abc")
	}
}

// ─── Utility Tests ──────────────────────────────────────────────────────────

func TestSHA256Hex(t *testing.T) {
	// Known SHA-256 of "hello"
	got := SHA256Hex([]byte("hello"))
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %q, want %q", got, want)
	}
}

// ─── Error Tests ────────────────────────────────────────────────────────────

func TestSentinelErrors(t *testing.T) {
	errs := []struct {
		name string
		err  error
	}{
		{"ErrInvalidPermitData", ErrInvalidPermitData},
		{"ErrPermitNotFound", ErrPermitNotFound},
		{"ErrNoActiveViolations", ErrNoActiveViolations},
		{"ErrPermitNotInViolation", ErrPermitNotInViolation},
		{"ErrStaleSelection", ErrStaleSelection},
		{"ErrEnforcementInProgress", ErrEnforcementInProgress},
		{"ErrTemplateDataMissing", ErrTemplateDataMissing},
		{"ErrProofGeneration", ErrProofGeneration},
		{"ErrLedgerSequence", ErrLedgerSequence},
		{"ErrLedgerCorrupted", ErrLedgerCorrupted},
	}

	for _, tt := range errs {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Errorf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s.Error() is empty", tt.name)
			}
		})
	}
}

// ─── Classification Constant Tests ──────────────────────────────────────────

func TestClassificationValues(t *testing.T) {
	if Compliant != "COMPLIANT" {
		t.Errorf("Compliant should be COMPLIANT, got %s", Compliant)
	}
	if AtRisk != "AT_RISK" {
		t.Errorf("AtRisk should be AT_RISK, got %s", AtRisk)
	}
	if Violation != "VIOLATION" {
		t.Errorf("Violation should be VIOLATION, got %s", Violation)
	}
}

func TestPhaseValues(t *testing.T) {
	phases := []Phase{
		PhaseIdle, PhaseSelected, PhaseTriggered,
		PhaseDrafting, PhaseNotarizing, PhaseCompleted, PhaseFailed,
	}
	seen := make(map[Phase]bool)
	for _, ph := range phases {
		if seen[ph] {
			t.Errorf("duplicate Phase: %s", ph)
		}
		seen[ph] = true
	}
	if len(seen) != 7 {
		t.Errorf("expected 7 unique Phases, got %d", len(seen))
	}
}
