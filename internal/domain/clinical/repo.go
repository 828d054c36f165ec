package clinical

import (
	"context"
)

// TreatmentRepository defines the persistence interface for treatments.
type TreatmentRepository interface {
	Create(ctx context.Context, t *Treatment) error
	// ListByPatient joins treatments through appointments, newest first.
	ListByPatient(ctx context.Context, patientID int64) ([]*HistoryEntry, error)
	ListAll(ctx context.Context, limit, offset int) ([]*HistoryEntry, int, error)
}
