// Package reconciliation holds the rules that relate invoices to the
// proformas they fulfill and derive proforma status from vehicle coverage.
package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
)

// MatchStep names the rule that produced a link
type MatchStep string

const (
	// StepExisting marks a link that was already stored and is still valid
	StepExisting       MatchStep = "existing"
	StepSharedVehicle  MatchStep = "shared_vehicle"
	StepNotesReference MatchStep = "notes_reference"
	StepSameParty      MatchStep = "same_party"
	StepNone           MatchStep = ""
)

// String returns the string representation of MatchStep
func (s MatchStep) String() string {
	return string(s)
}

// Candidate is a proforma proposed by a match strategy
type Candidate struct {
	ProformaID uuid.UUID
	Number     string
	IssuedAt   time.Time
}

// MatchStrategy is one rule of the linking cascade.
// Match returns nil without error when the rule has no candidate.
type MatchStrategy interface {
	Step() MatchStep
	Description() string
	Match(ctx context.Context, inv *trade.Invoice) (*Candidate, error)
}

// baseStrategy provides the naming part of MatchStrategy
type baseStrategy struct {
	step        MatchStep
	description string
}

// Step returns the step name
func (s baseStrategy) Step() MatchStep {
	return s.step
}

// Description returns a human-readable description
func (s baseStrategy) Description() string {
	return s.description
}

// DefaultStrategies returns the cascade in evaluation order
func DefaultStrategies(proformas trade.ProformaRepository) []MatchStrategy {
	return []MatchStrategy{
		NewSharedVehicleStrategy(proformas),
		NewNotesReferenceStrategy(proformas),
		NewSamePartyStrategy(proformas),
	}
}

// mostRecent picks the latest issued proforma; ties go to the lowest id.
func mostRecent(proformas []trade.Proforma) *trade.Proforma {
	var best *trade.Proforma
	for i := range proformas {
		p := &proformas[i]
		if best == nil || isMoreRecent(p, best) {
			best = p
		}
	}
	return best
}

func isMoreRecent(a, b *trade.Proforma) bool {
	if !a.IssuedAt.Equal(b.IssuedAt) {
		return a.IssuedAt.After(b.IssuedAt)
	}
	return compareIDs(a.ID, b.ID) < 0
}

func candidateFrom(p *trade.Proforma) *Candidate {
	if p == nil {
		return nil
	}
	return &Candidate{ProformaID: p.ID, Number: p.Number, IssuedAt: p.IssuedAt}
}
