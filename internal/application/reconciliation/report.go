package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
)

// Entity types named in failures and metrics
const (
	EntityInvoice  = "invoice"
	EntityProforma = "proforma"
)

// Pass phases
const (
	PhaseLink   = "link"
	PhaseStatus = "status"
)

// FailureKind classifies a per-entity failure
type FailureKind string

const (
	// FailureKindDataAccess: a read or write against the store failed
	FailureKindDataAccess FailureKind = "data_access"
	// FailureKindConflict: a conditional write found the stored value changed
	FailureKindConflict FailureKind = "conflict"
	// FailureKindEnumeration: the next batch could not be listed; the phase stopped
	FailureKindEnumeration FailureKind = "enumeration"
)

// String returns the string representation of FailureKind
func (k FailureKind) String() string {
	return string(k)
}

// EntityFailure records one entity that could not be reconciled
type EntityFailure struct {
	Kind       FailureKind `json:"kind"`
	Phase      string      `json:"phase"`
	EntityType string      `json:"entity_type"`
	EntityID   *uuid.UUID  `json:"entity_id,omitempty"`
	Error      string      `json:"error"`
}

// InvoiceResult is the outcome of the link phase for one invoice. NewLink is
// the link the invoice holds after the pass (planned, on a dry run); a kept
// stale link appears as both HadLink and NewLink.
type InvoiceResult struct {
	InvoiceID uuid.UUID                  `json:"invoice_id"`
	Number    string                     `json:"number"`
	HadLink   *uuid.UUID                 `json:"had_link,omitempty"`
	NewLink   *uuid.UUID                 `json:"new_link,omitempty"`
	Step      reconciliation.MatchStep   `json:"step,omitempty"`
	Outcome   reconciliation.LinkOutcome `json:"outcome"`
	Changed   bool                       `json:"changed"`
}

// ProformaResult is the outcome of the status phase for one proforma
type ProformaResult struct {
	ProformaID uuid.UUID            `json:"proforma_id"`
	Number     string               `json:"number"`
	Before     trade.ProformaStatus `json:"before"`
	After      trade.ProformaStatus `json:"after"`
	Total      int                  `json:"total_vehicles"`
	Covered    int                  `json:"covered_vehicles"`
	Excluded   bool                 `json:"excluded,omitempty"`
	Changed    bool                 `json:"changed"`
}

// Summary holds the counters of a pass
type Summary struct {
	InvoicesScanned    int `json:"invoices_scanned"`
	InvoicesSkipped    int `json:"invoices_skipped"`
	LinksCreated       int `json:"links_created"`
	LinksConfirmed     int `json:"links_confirmed"`
	InvoicesUnlinked   int `json:"invoices_unlinked"`
	StaleLinks         int `json:"stale_links"`
	ProformasScanned   int `json:"proformas_scanned"`
	StatusesChanged    int `json:"statuses_changed"`
	ProformasUnchanged int `json:"proformas_unchanged"`
	ProformasExcluded  int `json:"proformas_excluded"`
	Conflicts          int `json:"conflicts"`
	Failures           int `json:"failures"`
}

// Report is the result of one reconciliation pass. In a dry run every
// Changed entry describes a write that was computed but not performed.
type Report struct {
	RunID          string           `json:"run_id"`
	DryRun         bool             `json:"dry_run"`
	CompanyID      *uuid.UUID       `json:"company_id,omitempty"`
	BatchSize      int              `json:"batch_size"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
	DurationMillis int64            `json:"duration_ms"`
	Interrupted    bool             `json:"interrupted"`
	Summary        Summary          `json:"summary"`
	Invoices       []InvoiceResult  `json:"invoices"`
	Proformas      []ProformaResult `json:"proformas"`
	Failures       []EntityFailure  `json:"failures"`
}

func newReport(runID string, opts RunOptions, startedAt time.Time) *Report {
	return &Report{
		RunID:     runID,
		DryRun:    opts.DryRun,
		CompanyID: opts.CompanyID,
		BatchSize: opts.BatchSize,
		StartedAt: startedAt,
		Invoices:  []InvoiceResult{},
		Proformas: []ProformaResult{},
		Failures:  []EntityFailure{},
	}
}

func (r *Report) addFailure(f EntityFailure) {
	r.Failures = append(r.Failures, f)
	r.Summary.Failures++
	if f.Kind == FailureKindConflict {
		r.Summary.Conflicts++
	}
}

func (r *Report) finish(at time.Time) {
	r.FinishedAt = at
	r.DurationMillis = at.Sub(r.StartedAt).Milliseconds()
}

// Duration returns the wall time of the pass
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// HasEnumerationFailure reports whether a phase stopped early because a batch
// could not be listed
func (r *Report) HasEnumerationFailure() bool {
	for _, f := range r.Failures {
		if f.Kind == FailureKindEnumeration {
			return true
		}
	}
	return false
}

// Finding is the audit result for one anomaly kind
type Finding struct {
	Kind       reconciliation.AnomalyKind `json:"kind"`
	EntityType string                     `json:"entity_type"`
	Count      int64                      `json:"count"`
	SampleIDs  []uuid.UUID                `json:"sample_ids"`
	Error      string                     `json:"error,omitempty"`
}

// AnomalyReport is the result of one integrity audit
type AnomalyReport struct {
	AuditID        string    `json:"audit_id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	DurationMillis int64     `json:"duration_ms"`
	SampleLimit    int       `json:"sample_limit"`
	Interrupted    bool      `json:"interrupted"`
	TotalAnomalies int64     `json:"total_anomalies"`
	Findings       []Finding `json:"findings"`
}

// Finding returns the finding for kind, if the audit reached it
func (r *AnomalyReport) Finding(kind reconciliation.AnomalyKind) (Finding, bool) {
	for _, f := range r.Findings {
		if f.Kind == kind {
			return f, true
		}
	}
	return Finding{}, false
}

// Clean reports whether every kind was checked and none had anomalies
func (r *AnomalyReport) Clean() bool {
	if r.Interrupted || r.TotalAnomalies > 0 {
		return false
	}
	for _, f := range r.Findings {
		if f.Error != "" {
			return false
		}
	}
	return true
}
