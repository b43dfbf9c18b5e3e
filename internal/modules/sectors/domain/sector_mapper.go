package domain

import (
	"strings"

	"hospitalSectorsWs/internal/shared/normalization"
)

const (
	// UnknownRole labels staff entries that arrive without a role.
	UnknownRole = "Não informado"
	// DefaultNeutralStatus is applied to neutral sectors without a status.
	DefaultNeutralStatus = "ativo"
	// TotalAreaName names the synthetic area summarising an assistance sector.
	TotalAreaName = "Total"
)

// SectorMapper turns a RawSnapshot into the dashboard view models.
type SectorMapper struct {
	currency *normalization.CurrencyNormalizer
}

// NewSectorMapper uses the pt-BR currency convention when currency is nil.
func NewSectorMapper(currency *normalization.CurrencyNormalizer) *SectorMapper {
	if currency == nil {
		currency = normalization.NewCurrencyNormalizer("pt-BR")
	}
	return &SectorMapper{currency: currency}
}

// BuildSnapshot maps every section of raw for hospitalID.
func (m *SectorMapper) BuildSnapshot(hospitalID string, raw RawSnapshot) *HospitalSectorSnapshot {
	snapshot := EmptySnapshot(strings.TrimSpace(hospitalID))
	snapshot.SnapshotID = raw.ID
	for _, sector := range raw.Internation {
		snapshot.Internation = append(snapshot.Internation, m.MapInternationSector(sector, raw.Projections))
	}
	for _, sector := range raw.Assistance {
		snapshot.Assistance = append(snapshot.Assistance, m.MapAssistanceSector(sector))
	}
	for _, sector := range raw.Neutral {
		snapshot.Neutral = append(snapshot.Neutral, m.MapNeutralSector(sector))
	}
	return snapshot
}

// MapInternationSector merges the sector with its projected-staffing record, if any.
// Dimensioning values win over the sector's own counts; each missing value falls back
// independently.
func (m *SectorMapper) MapInternationSector(raw RawSector, projections []RawProjection) InternationSector {
	sector := InternationSector{
		ID:         raw.ID,
		Name:       raw.Name,
		Descr:      raw.Descr,
		CostAmount: m.currency.Normalize(raw.CostAmount),
		Staff:      mapStaff(raw.Staff),
	}

	projection := findProjection(raw.ID, projections)
	dim := RawDimensioning{}
	if projection != nil && projection.Dimensioning != nil {
		dim = *projection.Dimensioning
	}

	sector.BedCount = firstInt(dim.TotalBeds, raw.BedCount)
	sector.BedStatus = BedStatus{
		Evaluated: firstInt(dim.Evaluated, raw.BedStatus.Evaluated),
		Vacant:    firstInt(dim.Vacant, raw.BedStatus.Vacant),
		Inactive:  firstInt(dim.Inactive, raw.BedStatus.Inactive),
	}
	sector.CareLevel = CareLevel{
		MinimumCare:      firstInt(dim.Classification.MinimumCare, raw.CareLevel.MinimumCare),
		IntermediateCare: firstInt(dim.Classification.IntermediateCare, raw.CareLevel.IntermediateCare),
		HighDependency:   firstInt(dim.Classification.HighDependency, raw.CareLevel.HighDependency),
		SemiIntensive:    firstInt(dim.Classification.SemiIntensive, raw.CareLevel.SemiIntensive),
		Intensive:        firstInt(dim.Classification.Intensive, raw.CareLevel.Intensive),
	}

	if projection != nil {
		sector.ProjectedFinal = &ProjectedFinal{
			Cargos:          projection.Roles,
			PeriodoTravado:  projection.LockedPeriod,
			Dimensionamento: projection.DimensioningJSON,
		}
	}
	return sector
}

// MapAssistanceSector reports the staff headcount as SiteCount.
func (m *SectorMapper) MapAssistanceSector(raw RawSector) AssistanceSector {
	staff := mapStaff(raw.Staff)
	total := 0
	for _, member := range staff {
		total += member.Quantity
	}
	return AssistanceSector{
		ID:         raw.ID,
		Name:       raw.Name,
		Descr:      raw.Descr,
		CostAmount: m.currency.Normalize(raw.CostAmount),
		SiteCount:  total,
		Areas:      []Area{{Name: TotalAreaName, Quantity: total}},
		Staff:      staff,
	}
}

func (m *SectorMapper) MapNeutralSector(raw RawSector) NeutralSector {
	status := DefaultNeutralStatus
	if raw.Status != nil {
		status = *raw.Status
	}
	return NeutralSector{
		ID:         raw.ID,
		Name:       raw.Name,
		Descr:      raw.Descr,
		CostAmount: m.currency.Normalize(raw.CostAmount),
		Status:     status,
	}
}

// findProjection returns the first projection for unitID in backend order.
func findProjection(unitID string, projections []RawProjection) *RawProjection {
	if unitID == "" {
		return nil
	}
	for i := range projections {
		if projections[i].UnitID == unitID {
			return &projections[i]
		}
	}
	return nil
}

func mapStaff(raw []RawStaffMember) []StaffMember {
	staff := make([]StaffMember, 0, len(raw))
	for _, member := range raw {
		role := UnknownRole
		if member.Role != nil {
			role = *member.Role
		}
		staff = append(staff, StaffMember{
			ID:       member.ID,
			Role:     role,
			Quantity: firstInt(member.Quantity),
		})
	}
	return staff
}

func firstInt(values ...*int) int {
	for _, value := range values {
		if value != nil {
			return *value
		}
	}
	return 0
}
