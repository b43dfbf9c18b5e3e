package normalization

import "strings"

// Canonical sector kinds as they appear in the snapshot payload.
const (
	SectorKindInternation = "internation"
	SectorKindAssistance  = "assistance"
	SectorKindNeutral     = "neutral"
)

// sectorKindAliases maps the spellings used by dashboards and the backend
// (English, Portuguese, singular/plural) to the canonical kind.
var sectorKindAliases = map[string]string{
	"internation":  SectorKindInternation,
	"internations": SectorKindInternation,
	"internment":   SectorKindInternation,
	"internacao":   SectorKindInternation,
	"internação":   SectorKindInternation,
	"ward":         SectorKindInternation,
	"wards":        SectorKindInternation,

	"assistance":   SectorKindAssistance,
	"assistencia":  SectorKindAssistance,
	"assistência":  SectorKindAssistance,
	"assistencial": SectorKindAssistance,

	"neutral": SectorKindNeutral,
	"neutro":  SectorKindNeutral,
	"neutros": SectorKindNeutral,
	"support": SectorKindNeutral,
}

// NormalizeSectorKind returns the canonical kind for raw, or "" when unknown.
//
//	NormalizeSectorKind(" Internação ") => "internation"
//	NormalizeSectorKind("neutro")       => "neutral"
func NormalizeSectorKind(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	return sectorKindAliases[key]
}

// AllSectorKinds lists the canonical kinds in payload order.
func AllSectorKinds() []string {
	return []string{SectorKindInternation, SectorKindAssistance, SectorKindNeutral}
}
