package domain

import (
	"encoding/json"
	"slices"
)

// HospitalSectorSnapshot is the dashboard view of one hospital's sector baseline.
// Values handed out by the snapshot service are shared with its cache and must be
// treated as read-only; use Clone before mutating.
type HospitalSectorSnapshot struct {
	ID          string              `json:"id"`
	SnapshotID  string              `json:"snapshotId,omitempty"`
	Internation []InternationSector `json:"internation"`
	Assistance  []AssistanceSector  `json:"assistance"`
	Neutral     []NeutralSector     `json:"neutral"`
}

type InternationSector struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Descr          string          `json:"descr"`
	CostAmount     float64         `json:"costAmount"`
	BedCount       int             `json:"bedCount"`
	CareLevel      CareLevel       `json:"careLevel"`
	BedStatus      BedStatus       `json:"bedStatus"`
	Staff          []StaffMember   `json:"staff"`
	ProjectedFinal *ProjectedFinal `json:"projectedFinal"`
}

type CareLevel struct {
	MinimumCare      int `json:"minimumCare"`
	IntermediateCare int `json:"intermediateCare"`
	HighDependency   int `json:"highDependency"`
	SemiIntensive    int `json:"semiIntensive"`
	Intensive        int `json:"intensive"`
}

type BedStatus struct {
	Evaluated int `json:"evaluated"`
	Vacant    int `json:"vacant"`
	Inactive  int `json:"inactive"`
}

// ProjectedFinal carries the matched projected-staffing record as the backend sent it.
type ProjectedFinal struct {
	Cargos          json.RawMessage `json:"cargos"`
	PeriodoTravado  json.RawMessage `json:"periodoTravado"`
	Dimensionamento json.RawMessage `json:"dimensionamento"`
}

// AssistanceSector.SiteCount is the staff headcount of the sector; the name is kept
// for compatibility with existing dashboards.
type AssistanceSector struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Descr      string        `json:"descr"`
	CostAmount float64       `json:"costAmount"`
	SiteCount  int           `json:"siteCount"`
	Areas      []Area        `json:"areas"`
	Staff      []StaffMember `json:"staff"`
}

type Area struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type NeutralSector struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Descr      string  `json:"descr"`
	CostAmount float64 `json:"costAmount"`
	Status     string  `json:"status"`
}

type StaffMember struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Quantity int    `json:"quantity"`
}

// EmptySnapshot is the structurally valid result served when a snapshot cannot be built.
func EmptySnapshot(hospitalID string) *HospitalSectorSnapshot {
	return &HospitalSectorSnapshot{
		ID:          hospitalID,
		Internation: []InternationSector{},
		Assistance:  []AssistanceSector{},
		Neutral:     []NeutralSector{},
	}
}

// IsEmpty reports whether the snapshot holds no sector of any kind.
func (s *HospitalSectorSnapshot) IsEmpty() bool {
	return s == nil || len(s.Internation)+len(s.Assistance)+len(s.Neutral) == 0
}

// Clone returns a deep copy.
func (s *HospitalSectorSnapshot) Clone() *HospitalSectorSnapshot {
	if s == nil {
		return nil
	}
	cloned := &HospitalSectorSnapshot{
		ID:          s.ID,
		SnapshotID:  s.SnapshotID,
		Internation: make([]InternationSector, len(s.Internation)),
		Assistance:  make([]AssistanceSector, len(s.Assistance)),
		Neutral:     slices.Clone(s.Neutral),
	}
	if cloned.Neutral == nil {
		cloned.Neutral = []NeutralSector{}
	}
	for i, sector := range s.Internation {
		sector.Staff = cloneStaff(sector.Staff)
		sector.ProjectedFinal = sector.ProjectedFinal.clone()
		cloned.Internation[i] = sector
	}
	for i, sector := range s.Assistance {
		sector.Staff = cloneStaff(sector.Staff)
		sector.Areas = slices.Clone(sector.Areas)
		cloned.Assistance[i] = sector
	}
	return cloned
}

func (p *ProjectedFinal) clone() *ProjectedFinal {
	if p == nil {
		return nil
	}
	return &ProjectedFinal{
		Cargos:          slices.Clone(p.Cargos),
		PeriodoTravado:  slices.Clone(p.PeriodoTravado),
		Dimensionamento: slices.Clone(p.Dimensionamento),
	}
}

func cloneStaff(staff []StaffMember) []StaffMember {
	if staff == nil {
		return []StaffMember{}
	}
	return slices.Clone(staff)
}
