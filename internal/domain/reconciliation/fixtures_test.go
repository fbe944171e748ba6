package reconciliation

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// memStore is an in-memory store for proformas and invoices
type memStore struct {
	proformas      map[uuid.UUID]*trade.Proforma
	invoices       map[uuid.UUID]*trade.Invoice
	writes         int
	referenceScans int
}

func newMemStore() *memStore {
	return &memStore{
		proformas: make(map[uuid.UUID]*trade.Proforma),
		invoices:  make(map[uuid.UUID]*trade.Invoice),
	}
}

func (s *memStore) addProforma(p *trade.Proforma) *trade.Proforma {
	s.proformas[p.ID] = p
	return p
}

func (s *memStore) addInvoice(inv *trade.Invoice) *trade.Invoice {
	s.invoices[inv.ID] = inv
	return inv
}

func (s *memStore) sortedProformas() []*trade.Proforma {
	out := make([]*trade.Proforma, 0, len(s.proformas))
	for _, p := range s.proformas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return shared.CompareIDs(out[i].ID, out[j].ID) < 0 })
	return out
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*trade.Proforma, error) {
	p, ok := s.proformas[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListNonTerminal(_ context.Context, q shared.ListQuery) ([]trade.Proforma, error) {
	var out []trade.Proforma
	for _, p := range s.sortedProformas() {
		if p.IsTerminal() || shared.CompareIDs(p.ID, q.AfterID) <= 0 {
			continue
		}
		out = append(out, *p)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) FindNonTerminalByParty(_ context.Context, companyID, clientID uuid.UUID) ([]trade.Proforma, error) {
	var out []trade.Proforma
	for _, p := range s.sortedProformas() {
		if p.IsTerminal() || p.CompanyID != companyID || p.ClientID == nil || *p.ClientID != clientID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) ListReferences(_ context.Context) ([]trade.ProformaReference, error) {
	s.referenceScans++
	var out []trade.ProformaReference
	for _, p := range s.sortedProformas() {
		out = append(out, trade.ProformaReference{ID: p.ID, Number: p.Number, Status: p.Status})
	}
	return out, nil
}

func (s *memStore) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, next trade.ProformaStatus) error {
	p, ok := s.proformas[id]
	if !ok || p.Status != expected {
		return shared.ErrConcurrencyConflict
	}
	p.Status = next
	s.writes++
	return nil
}

func (s *memStore) CoveredVehicles(_ context.Context, vehicleIDs []uuid.UUID) ([]uuid.UUID, error) {
	wanted := make(map[uuid.UUID]struct{}, len(vehicleIDs))
	for _, id := range vehicleIDs {
		wanted[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, inv := range s.invoices {
		if !inv.IsEligible() {
			continue
		}
		for _, id := range inv.VehicleIDs() {
			if _, ok := wanted[id]; !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *memStore) UpdateProformaLinkIf(_ context.Context, id uuid.UUID, expected, next *uuid.UUID) error {
	inv, ok := s.invoices[id]
	if !ok || !shared.SameID(inv.ProformaID, expected) {
		return shared.ErrConcurrencyConflict
	}
	inv.ProformaID = copyID(next)
	s.writes++
	return nil
}

var _ trade.ProformaRepository = (*memStore)(nil)

func seqID(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}

func proformaFixture(t *testing.T, id uuid.UUID, number string, companyID uuid.UUID, clientID *uuid.UUID, issuedAt time.Time, vehicles ...uuid.UUID) *trade.Proforma {
	t.Helper()
	p, err := trade.NewProforma(number, companyID, clientID, issuedAt)
	require.NoError(t, err)
	if id != uuid.Nil {
		p.ID = id
	}
	for _, v := range vehicles {
		vid := v
		p.AddItem(&vid, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(10000))
	}
	return p
}

func invoiceFixture(t *testing.T, number string, companyID uuid.UUID, clientID *uuid.UUID, vehicles ...uuid.UUID) *trade.Invoice {
	t.Helper()
	inv, err := trade.NewInvoice(number, companyID, clientID, baseTime.Add(24*time.Hour))
	require.NoError(t, err)
	for _, v := range vehicles {
		vid := v
		inv.AddItem(&vid, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(10000))
	}
	return inv
}
