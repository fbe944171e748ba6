package shared

import "github.com/google/uuid"

// ListQuery describes one page of a keyset-paginated enumeration ordered by
// ascending id. A zero AfterID starts from the beginning.
type ListQuery struct {
	AfterID   uuid.UUID
	Limit     int
	CompanyID *uuid.UUID
}

// Next returns the query for the page that follows lastID.
func (q ListQuery) Next(lastID uuid.UUID) ListQuery {
	q.AfterID = lastID
	return q
}

// HasCursor reports whether the query resumes after a previous page.
func (q ListQuery) HasCursor() bool {
	return q.AfterID != uuid.Nil
}
