package infrastructure

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

// decodeSectorSnapshot keeps numbers as json.Number so identifiers and counts survive
// unchanged until the parse step converts them.
func decodeSectorSnapshot(body io.Reader) (domain.RawSnapshot, error) {
	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return domain.RawSnapshot{}, fmt.Errorf("%w: decode body: %v", domain.ErrMalformedSnapshot, err)
	}
	slog.Debug("sector snapshot payload decoded", slog.String("type", fmt.Sprintf("%T", payload)))

	raw, err := domain.ParseRawSnapshot(payload)
	if err != nil {
		return domain.RawSnapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return raw, nil
}
