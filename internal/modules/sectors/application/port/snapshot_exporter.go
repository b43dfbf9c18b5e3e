package port

import (
	"io"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

// SnapshotExporter renders a snapshot as a downloadable document.
type SnapshotExporter interface {
	Export(w io.Writer, snapshot *domain.HospitalSectorSnapshot) error
	ContentType() string
	FileName(hospitalID string) string
}
