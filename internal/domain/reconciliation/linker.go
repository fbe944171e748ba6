package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
)

// LinkOutcome is the result of linking one invoice
type LinkOutcome string

const (
	// OutcomeIneligible: the invoice is soft-deleted or voided
	OutcomeIneligible LinkOutcome = "ineligible"
	// OutcomeConfirmed: the stored link points to an existing open proforma
	OutcomeConfirmed LinkOutcome = "confirmed"
	// OutcomeLinked: a new link was chosen (and written, for Link)
	OutcomeLinked LinkOutcome = "linked"
	// OutcomeUnlinked: no strategy produced a candidate
	OutcomeUnlinked LinkOutcome = "unlinked"
	// OutcomeStale: the stored link is invalid and no replacement was found
	OutcomeStale LinkOutcome = "stale"
)

// String returns the string representation of LinkOutcome
func (o LinkOutcome) String() string {
	return string(o)
}

// Match is the linker's decision for one invoice
type Match struct {
	Outcome LinkOutcome
	Step    MatchStep
	// Previous is the link stored on the invoice when it was resolved
	Previous *uuid.UUID
	// ProformaID is the confirmed or chosen proforma, nil when unlinked
	ProformaID *uuid.UUID
	Number     string
}

// Changed reports whether the decision replaces the stored link
func (m Match) Changed() bool {
	return m.Outcome == OutcomeLinked
}

// ProformaLookup resolves proformas by id
type ProformaLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*trade.Proforma, error)
}

// LinkWriter persists invoice links conditionally
type LinkWriter interface {
	UpdateProformaLinkIf(ctx context.Context, id uuid.UUID, expected, next *uuid.UUID) error
}

// Linker decides which proforma an invoice fulfills
type Linker struct {
	strategies []MatchStrategy
	proformas  ProformaLookup
	writer     LinkWriter
}

// NewLinker creates a linker that evaluates strategies in order
func NewLinker(proformas ProformaLookup, writer LinkWriter, strategies ...MatchStrategy) *Linker {
	return &Linker{
		strategies: strategies,
		proformas:  proformas,
		writer:     writer,
	}
}

// Strategies returns the cascade in evaluation order
func (l *Linker) Strategies() []MatchStrategy {
	return l.strategies
}

// Resolve computes the link for inv without writing anything.
func (l *Linker) Resolve(ctx context.Context, inv *trade.Invoice) (Match, error) {
	match := Match{Previous: copyID(inv.ProformaID)}
	if !inv.IsEligible() {
		match.Outcome = OutcomeIneligible
		return match, nil
	}

	if inv.IsLinked() {
		valid, number, err := l.validLink(ctx, *inv.ProformaID)
		if err != nil {
			return match, err
		}
		if valid {
			match.Outcome = OutcomeConfirmed
			match.Step = StepExisting
			match.ProformaID = copyID(inv.ProformaID)
			match.Number = number
			return match, nil
		}
	}

	for _, strategy := range l.strategies {
		candidate, err := strategy.Match(ctx, inv)
		if err != nil {
			return match, fmt.Errorf("%s: %w", strategy.Step(), err)
		}
		if candidate == nil {
			continue
		}
		id := candidate.ProformaID
		match.Outcome = OutcomeLinked
		match.Step = strategy.Step()
		match.ProformaID = &id
		match.Number = candidate.Number
		return match, nil
	}

	if inv.IsLinked() {
		match.Outcome = OutcomeStale
	} else {
		match.Outcome = OutcomeUnlinked
	}
	return match, nil
}

// Link resolves inv and persists a new link when one was chosen. The write is
// conditional on the link still holding the value read with the invoice; a
// miss returns shared.ErrConcurrencyConflict. On success inv is updated.
func (l *Linker) Link(ctx context.Context, inv *trade.Invoice) (Match, error) {
	match, err := l.Resolve(ctx, inv)
	if err != nil || !match.Changed() {
		return match, err
	}

	if err := l.writer.UpdateProformaLinkIf(ctx, inv.ID, match.Previous, match.ProformaID); err != nil {
		return match, fmt.Errorf("write link for invoice %s: %w", inv.ID, err)
	}
	inv.ProformaID = copyID(match.ProformaID)
	return match, nil
}

func (l *Linker) validLink(ctx context.Context, id uuid.UUID) (bool, string, error) {
	p, err := l.proformas.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return false, "", nil
	}
	if err != nil {
		return false, "", fmt.Errorf("validate link %s: %w", id, err)
	}
	return !p.IsTerminal(), p.Number, nil
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
