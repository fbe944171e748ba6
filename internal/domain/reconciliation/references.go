package reconciliation

import (
	"context"
	"sync"

	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
)

// ReferenceLister lists proforma references ordered by ascending id
type ReferenceLister interface {
	ListReferences(ctx context.Context) ([]trade.ProformaReference, error)
}

// ReferenceSnapshot holds the proforma reference scan of one pass so the
// notes step reads it once instead of once per invoice. It is filled on
// first use; a failed scan is retried by the next caller.
type ReferenceSnapshot struct {
	mu     sync.Mutex
	loaded bool
	refs   []trade.ProformaReference
}

// NewReferenceSnapshot creates an empty snapshot
func NewReferenceSnapshot() *ReferenceSnapshot {
	return &ReferenceSnapshot{}
}

// References returns the snapshot, scanning source the first time
func (s *ReferenceSnapshot) References(ctx context.Context, source ReferenceLister) ([]trade.ProformaReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.refs, nil
	}
	refs, err := source.ListReferences(ctx)
	if err != nil {
		return nil, err
	}
	s.refs, s.loaded = refs, true
	return refs, nil
}

type referenceSnapshotKey struct{}

// WithReferenceSnapshot returns a context whose notes lookups share snap
func WithReferenceSnapshot(ctx context.Context, snap *ReferenceSnapshot) context.Context {
	return context.WithValue(ctx, referenceSnapshotKey{}, snap)
}

// referencesFor reads from the snapshot in ctx, or from source when there is none
func referencesFor(ctx context.Context, source ReferenceLister) ([]trade.ProformaReference, error) {
	if snap, ok := ctx.Value(referenceSnapshotKey{}).(*ReferenceSnapshot); ok && snap != nil {
		return snap.References(ctx, source)
	}
	return source.ListReferences(ctx)
}
