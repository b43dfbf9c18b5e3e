package port

import (
	"context"
	"errors"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

var (
	ErrSnapshotForbidden = errors.New("sector snapshot forbidden")
	ErrSnapshotNotFound  = errors.New("sector snapshot not found")
)

// SectorSnapshotFetcher loads and validates a hospital's sector snapshot from the backend.
// A body that is not a JSON object fails with domain.ErrMalformedSnapshot.
type SectorSnapshotFetcher interface {
	FetchHospitalSectors(ctx context.Context, hospitalID string) (domain.RawSnapshot, error)
}
