package reconciliation

import (
	"context"
)

// ReportStore keeps the latest pass and audit reports so they can be served
// after the fact. Latest* return shared.ErrNotFound before the first save.
type ReportStore interface {
	SaveRun(ctx context.Context, report *Report) error
	LatestRun(ctx context.Context) (*Report, error)
	SaveAudit(ctx context.Context, report *AnomalyReport) error
	LatestAudit(ctx context.Context) (*AnomalyReport, error)
}
