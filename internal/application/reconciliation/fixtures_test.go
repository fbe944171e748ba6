package reconciliation

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/inventory"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/partner"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)

// world is a shared in-memory dataset behind the fake repositories
type world struct {
	mu        sync.Mutex
	proformas map[uuid.UUID]*trade.Proforma
	invoices  map[uuid.UUID]*trade.Invoice
	companies map[uuid.UUID]*partner.Company
	clients   map[uuid.UUID]*partner.Client
	vehicles  map[uuid.UUID]*inventory.Vehicle

	linkWrites     int
	statusWrites   int
	referenceScans int

	listInvoicesErr  error
	listProformasErr error
	statusErr        map[uuid.UUID]error
	coverageErr      error
}

func newWorld() *world {
	return &world{
		proformas: make(map[uuid.UUID]*trade.Proforma),
		invoices:  make(map[uuid.UUID]*trade.Invoice),
		companies: make(map[uuid.UUID]*partner.Company),
		clients:   make(map[uuid.UUID]*partner.Client),
		vehicles:  make(map[uuid.UUID]*inventory.Vehicle),
		statusErr: make(map[uuid.UUID]error),
	}
}

func (w *world) addProforma(t *testing.T, number string, companyID uuid.UUID, clientID *uuid.UUID, issuedAt time.Time, vehicles ...uuid.UUID) *trade.Proforma {
	t.Helper()
	p, err := trade.NewProforma(number, companyID, clientID, issuedAt)
	require.NoError(t, err)
	for _, v := range vehicles {
		vid := v
		p.AddItem(&vid, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(15000))
	}
	w.proformas[p.ID] = p
	return p
}

func (w *world) addInvoice(t *testing.T, number string, companyID uuid.UUID, clientID *uuid.UUID, vehicles ...uuid.UUID) *trade.Invoice {
	t.Helper()
	inv, err := trade.NewInvoice(number, companyID, clientID, baseTime.Add(48*time.Hour))
	require.NoError(t, err)
	for _, v := range vehicles {
		vid := v
		inv.AddItem(&vid, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(15000))
	}
	w.invoices[inv.ID] = inv
	return inv
}

func (w *world) addVehicle(t *testing.T, plate string) *inventory.Vehicle {
	t.Helper()
	v, err := inventory.NewVehicle(plate, "Seat", "Ibiza", "")
	require.NoError(t, err)
	w.vehicles[v.ID] = v
	return v
}

func (w *world) proforma(id uuid.UUID) *trade.Proforma {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.proformas[id]
}

func (w *world) invoice(id uuid.UUID) *trade.Invoice {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.invoices[id]
}

func sortedKeys[T any](m map[uuid.UUID]T) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return shared.CompareIDs(ids[i], ids[j]) < 0 })
	return ids
}

func inScope(q shared.ListQuery, id, companyID uuid.UUID) bool {
	if shared.CompareIDs(id, q.AfterID) <= 0 {
		return false
	}
	return q.CompanyID == nil || *q.CompanyID == companyID
}

type fakeProformas struct{ w *world }

func (r fakeProformas) FindByID(_ context.Context, id uuid.UUID) (*trade.Proforma, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	p, ok := r.w.proformas[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakeProformas) ListNonTerminal(_ context.Context, q shared.ListQuery) ([]trade.Proforma, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	if r.w.listProformasErr != nil {
		return nil, r.w.listProformasErr
	}
	var out []trade.Proforma
	for _, id := range sortedKeys(r.w.proformas) {
		p := r.w.proformas[id]
		if p.IsTerminal() || !inScope(q, p.ID, p.CompanyID) {
			continue
		}
		out = append(out, *p)
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r fakeProformas) FindNonTerminalByParty(_ context.Context, companyID, clientID uuid.UUID) ([]trade.Proforma, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	var out []trade.Proforma
	for _, id := range sortedKeys(r.w.proformas) {
		p := r.w.proformas[id]
		if p.IsTerminal() || p.CompanyID != companyID || p.ClientID == nil || *p.ClientID != clientID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r fakeProformas) ListReferences(_ context.Context) ([]trade.ProformaReference, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	r.w.referenceScans++
	var out []trade.ProformaReference
	for _, id := range sortedKeys(r.w.proformas) {
		p := r.w.proformas[id]
		out = append(out, trade.ProformaReference{ID: p.ID, Number: p.Number, Status: p.Status})
	}
	return out, nil
}

func (r fakeProformas) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, next trade.ProformaStatus) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	if err := r.w.statusErr[id]; err != nil {
		return err
	}
	p, ok := r.w.proformas[id]
	if !ok || p.Status != expected {
		return shared.ErrConcurrencyConflict
	}
	p.Status = next
	r.w.statusWrites++
	return nil
}

type fakeInvoices struct{ w *world }

func (r fakeInvoices) FindByID(_ context.Context, id uuid.UUID) (*trade.Invoice, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	inv, ok := r.w.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r fakeInvoices) ListActive(_ context.Context, q shared.ListQuery) ([]trade.Invoice, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	if r.w.listInvoicesErr != nil {
		return nil, r.w.listInvoicesErr
	}
	var out []trade.Invoice
	for _, id := range sortedKeys(r.w.invoices) {
		inv := r.w.invoices[id]
		if !inv.Active || !inScope(q, inv.ID, inv.CompanyID) {
			continue
		}
		out = append(out, *inv)
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r fakeInvoices) CoveredVehicles(_ context.Context, vehicleIDs []uuid.UUID) ([]uuid.UUID, error) {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	if r.w.coverageErr != nil {
		return nil, r.w.coverageErr
	}
	wanted := make(map[uuid.UUID]struct{}, len(vehicleIDs))
	for _, id := range vehicleIDs {
		wanted[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, inv := range r.w.invoices {
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

func (r fakeInvoices) UpdateProformaLinkIf(_ context.Context, id uuid.UUID, expected, next *uuid.UUID) error {
	r.w.mu.Lock()
	defer r.w.mu.Unlock()
	inv, ok := r.w.invoices[id]
	if !ok || !shared.SameID(inv.ProformaID, expected) {
		return shared.ErrConcurrencyConflict
	}
	if next == nil {
		inv.ProformaID = nil
	} else {
		v := *next
		inv.ProformaID = &v
	}
	r.w.linkWrites++
	return nil
}

type fakeCompanies struct{ w *world }

func (r fakeCompanies) FindByID(_ context.Context, id uuid.UUID) (*partner.Company, error) {
	if c, ok := r.w.companies[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

type fakeClients struct{ w *world }

func (r fakeClients) FindByID(_ context.Context, id uuid.UUID) (*partner.Client, error) {
	if c, ok := r.w.clients[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

type fakeVehicles struct{ w *world }

func (r fakeVehicles) FindByID(_ context.Context, id uuid.UUID) (*inventory.Vehicle, error) {
	if v, ok := r.w.vehicles[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}

func (r fakeVehicles) FindByPlate(_ context.Context, plate string) (*inventory.Vehicle, error) {
	normalized := inventory.NormalizePlate(plate)
	for _, v := range r.w.vehicles {
		if v.Plate == normalized {
			return v, nil
		}
	}
	return nil, shared.ErrNotFound
}

var (
	_ trade.ProformaRepository    = fakeProformas{}
	_ trade.InvoiceRepository     = fakeInvoices{}
	_ partner.CompanyRepository   = fakeCompanies{}
	_ partner.ClientRepository    = fakeClients{}
	_ inventory.VehicleRepository = fakeVehicles{}
)

// recordingPublisher collects published events. onPublish runs after each one.
type recordingPublisher struct {
	mu        sync.Mutex
	events    []shared.DomainEvent
	onPublish func()
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	p.events = append(p.events, events...)
	hook := p.onPublish
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func newTestService(w *world, cfg ServiceConfig) *Service {
	proformas := fakeProformas{w}
	invoices := fakeInvoices{w}
	linker := reconciliation.NewLinker(proformas, invoices, reconciliation.DefaultStrategies(proformas)...)
	calculator := reconciliation.NewCalculator(invoices)
	return NewService(invoices, proformas, linker, calculator, zap.NewNop(), cfg)
}

func newTestInspector(w *world) *Inspector {
	proformas := fakeProformas{w}
	invoices := fakeInvoices{w}
	linker := reconciliation.NewLinker(proformas, invoices, reconciliation.DefaultStrategies(proformas)...)
	calculator := reconciliation.NewCalculator(invoices)
	return NewInspector(invoices, proformas, fakeCompanies{w}, fakeClients{w}, fakeVehicles{w}, linker, calculator)
}
