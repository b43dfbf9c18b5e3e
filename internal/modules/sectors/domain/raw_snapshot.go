package domain

import (
	"encoding/json"
	"errors"

	"hospitalSectorsWs/internal/shared/normalization"
)

// ErrMalformedSnapshot is returned when the backend body is not a JSON object.
var ErrMalformedSnapshot = errors.New("malformed sector snapshot payload")

// RawSnapshot is the typed view of the backend payload
// {id, snapshot: {dados: {internation, assistance, neutral, projetadoFinal: {internacao}}}}.
// Every scalar is optional; nil means the backend did not send a usable value.
type RawSnapshot struct {
	ID          string
	Internation []RawSector
	Assistance  []RawSector
	Neutral     []RawSector
	Projections []RawProjection
}

type RawSector struct {
	ID         string
	Name       string
	Descr      string
	Status     *string
	CostAmount any
	BedCount   *int
	BedStatus  RawBedStatus
	CareLevel  RawCareLevel
	Staff      []RawStaffMember
}

type RawBedStatus struct {
	Evaluated *int
	Vacant    *int
	Inactive  *int
}

type RawCareLevel struct {
	MinimumCare      *int
	IntermediateCare *int
	HighDependency   *int
	SemiIntensive    *int
	Intensive        *int
}

type RawStaffMember struct {
	ID       string
	Role     *string
	Quantity *int
}

// RawProjection is one projetadoFinal.internacao entry, matched to a sector by UnitID.
type RawProjection struct {
	UnitID       string
	Roles        json.RawMessage
	LockedPeriod json.RawMessage
	Dimensioning *RawDimensioning
	// DimensioningJSON keeps dimensionamento exactly as received.
	DimensioningJSON json.RawMessage
}

type RawDimensioning struct {
	TotalBeds      *int
	Evaluated      *int
	Vacant         *int
	Inactive       *int
	Classification RawCareLevel
}

// ParseRawSnapshot validates the decoded body. Only a non-object top level is an error;
// missing or mistyped nested fields decode to their zero value.
func ParseRawSnapshot(payload any) (RawSnapshot, error) {
	root := normalization.MapFromPayload(payload)
	if root == nil {
		return RawSnapshot{}, ErrMalformedSnapshot
	}

	data := normalization.AsMap(normalization.AsMap(root["snapshot"])["dados"])
	projected := normalization.AsMap(data["projetadoFinal"])

	return RawSnapshot{
		ID:          normalization.AsIdentifier(root["id"]),
		Internation: parseSectors(data["internation"]),
		Assistance:  parseSectors(data["assistance"]),
		Neutral:     parseSectors(data["neutral"]),
		Projections: parseProjections(projected["internacao"]),
	}, nil
}

func parseSectors(value any) []RawSector {
	items := normalization.AsInterfaceSlice(value)
	sectors := make([]RawSector, 0, len(items))
	for _, item := range items {
		record := normalization.AsMap(item)
		if record == nil {
			continue
		}
		bedStatus := normalization.AsMap(record["bedStatus"])
		sectors = append(sectors, RawSector{
			ID:         normalization.AsIdentifier(record["id"]),
			Name:       normalization.AsString(record["name"]),
			Descr:      normalization.AsString(record["descr"]),
			Status:     normalization.OptionalString(record["status"]),
			CostAmount: record["costAmount"],
			BedCount:   normalization.OptionalInt(record["bedCount"]),
			BedStatus: RawBedStatus{
				Evaluated: normalization.OptionalInt(bedStatus["evaluated"]),
				Vacant:    normalization.OptionalInt(bedStatus["vacant"]),
				Inactive:  normalization.OptionalInt(bedStatus["inactive"]),
			},
			CareLevel: parseCareLevel(normalization.AsMap(record["careLevel"]), careLevelFields),
			Staff:     parseStaff(record["staff"]),
		})
	}
	return sectors
}

func parseStaff(value any) []RawStaffMember {
	items := normalization.AsInterfaceSlice(value)
	staff := make([]RawStaffMember, 0, len(items))
	for _, item := range items {
		record := normalization.AsMap(item)
		if record == nil {
			continue
		}
		staff = append(staff, RawStaffMember{
			ID:       normalization.AsIdentifier(record["id"]),
			Role:     normalization.OptionalString(record["role"]),
			Quantity: normalization.OptionalInt(record["quantity"]),
		})
	}
	return staff
}

func parseProjections(value any) []RawProjection {
	items := normalization.AsInterfaceSlice(value)
	projections := make([]RawProjection, 0, len(items))
	for _, item := range items {
		record := normalization.AsMap(item)
		if record == nil {
			continue
		}
		projection := RawProjection{
			UnitID:           normalization.AsIdentifier(record["unidadeId"]),
			Roles:            normalization.RawJSON(record["cargos"]),
			LockedPeriod:     normalization.RawJSON(record["periodoTravado"]),
			DimensioningJSON: normalization.RawJSON(record["dimensionamento"]),
		}
		if dim := normalization.AsMap(record["dimensionamento"]); dim != nil {
			projection.Dimensioning = &RawDimensioning{
				TotalBeds:      normalization.OptionalInt(dim["totalLeitos"]),
				Evaluated:      normalization.OptionalInt(dim["leitosAvaliados"]),
				Vacant:         normalization.OptionalInt(dim["leitosVagos"]),
				Inactive:       normalization.OptionalInt(dim["leitosInativos"]),
				Classification: parseCareLevel(normalization.AsMap(dim["distribuicaoClassificacao"]), classificationFields),
			}
		}
		projections = append(projections, projection)
	}
	return projections
}

// careLevelKeys names the five care-level buckets in payload order:
// minimum, intermediate, high dependency, semi-intensive, intensive.
type careLevelKeys [5]string

var (
	careLevelFields      = careLevelKeys{"minimumCare", "intermediateCare", "highDependency", "semiIntensive", "intensive"}
	classificationFields = careLevelKeys{"PCM", "PCI", "PADC", "PCSI", "PCIt"}
)

func parseCareLevel(record map[string]any, keys careLevelKeys) RawCareLevel {
	return RawCareLevel{
		MinimumCare:      normalization.OptionalInt(record[keys[0]]),
		IntermediateCare: normalization.OptionalInt(record[keys[1]]),
		HighDependency:   normalization.OptionalInt(record[keys[2]]),
		SemiIntensive:    normalization.OptionalInt(record[keys[3]]),
		Intensive:        normalization.OptionalInt(record[keys[4]]),
	}
}
