package reconciliation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
)

var (
	compareIDs = shared.CompareIDs
	sortIDs    = shared.SortIDs
)

// SharedVehicleStrategy links an invoice to the most recent open proforma of
// the same company and client that lists one of the invoiced vehicles.
type SharedVehicleStrategy struct {
	baseStrategy
	proformas trade.ProformaRepository
}

// NewSharedVehicleStrategy creates a new SharedVehicleStrategy
func NewSharedVehicleStrategy(proformas trade.ProformaRepository) *SharedVehicleStrategy {
	return &SharedVehicleStrategy{
		baseStrategy: baseStrategy{
			step:        StepSharedVehicle,
			description: "Open proforma of the same company and client listing an invoiced vehicle",
		},
		proformas: proformas,
	}
}

// Match implements MatchStrategy
func (s *SharedVehicleStrategy) Match(ctx context.Context, inv *trade.Invoice) (*Candidate, error) {
	if !inv.HasParty() {
		return nil, nil
	}
	vehicles := inv.VehicleIDs()
	if len(vehicles) == 0 {
		return nil, nil
	}
	set := make(map[uuid.UUID]struct{}, len(vehicles))
	for _, id := range vehicles {
		set[id] = struct{}{}
	}

	open, err := s.proformas.FindNonTerminalByParty(ctx, inv.CompanyID, *inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("shared vehicle lookup: %w", err)
	}

	matching := make([]trade.Proforma, 0, len(open))
	for _, p := range open {
		if p.IsTerminal() || !p.ListsAnyVehicle(set) {
			continue
		}
		matching = append(matching, p)
	}
	return candidateFrom(mostRecent(matching)), nil
}

// NotesReferenceStrategy links an invoice whose notes mention a proforma
// number. Numbers are scanned in ascending proforma id order and the first one
// found inside the notes wins. A ReferenceSnapshot in the context replaces the
// per-invoice scan.
type NotesReferenceStrategy struct {
	baseStrategy
	proformas trade.ProformaRepository
}

// NewNotesReferenceStrategy creates a new NotesReferenceStrategy
func NewNotesReferenceStrategy(proformas trade.ProformaRepository) *NotesReferenceStrategy {
	return &NotesReferenceStrategy{
		baseStrategy: baseStrategy{
			step:        StepNotesReference,
			description: "Open proforma whose number appears in the invoice notes",
		},
		proformas: proformas,
	}
}

// Match implements MatchStrategy
func (s *NotesReferenceStrategy) Match(ctx context.Context, inv *trade.Invoice) (*Candidate, error) {
	if strings.TrimSpace(inv.Notes) == "" {
		return nil, nil
	}

	refs, err := referencesFor(ctx, s.proformas)
	if err != nil {
		return nil, fmt.Errorf("proforma reference scan: %w", err)
	}

	for _, ref := range refs {
		if ref.Status.IsTerminal() || strings.TrimSpace(ref.Number) == "" {
			continue
		}
		if strings.Contains(inv.Notes, ref.Number) {
			return &Candidate{ProformaID: ref.ID, Number: ref.Number}, nil
		}
	}
	return nil, nil
}

// SamePartyStrategy falls back to the most recent open proforma of the same
// company and client. Fulfilled proformas remain eligible.
type SamePartyStrategy struct {
	baseStrategy
	proformas trade.ProformaRepository
}

// NewSamePartyStrategy creates a new SamePartyStrategy
func NewSamePartyStrategy(proformas trade.ProformaRepository) *SamePartyStrategy {
	return &SamePartyStrategy{
		baseStrategy: baseStrategy{
			step:        StepSameParty,
			description: "Most recent open proforma of the same company and client",
		},
		proformas: proformas,
	}
}

// Match implements MatchStrategy
func (s *SamePartyStrategy) Match(ctx context.Context, inv *trade.Invoice) (*Candidate, error) {
	if !inv.HasParty() {
		return nil, nil
	}

	open, err := s.proformas.FindNonTerminalByParty(ctx, inv.CompanyID, *inv.ClientID)
	if err != nil {
		return nil, fmt.Errorf("same party lookup: %w", err)
	}

	eligible := open[:0:0]
	for _, p := range open {
		if !p.IsTerminal() {
			eligible = append(eligible, p)
		}
	}
	return candidateFrom(mostRecent(eligible)), nil
}

var (
	_ MatchStrategy = (*SharedVehicleStrategy)(nil)
	_ MatchStrategy = (*NotesReferenceStrategy)(nil)
	_ MatchStrategy = (*SamePartyStrategy)(nil)
)
