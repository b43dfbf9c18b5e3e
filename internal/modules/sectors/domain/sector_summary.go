package domain

import (
	"cmp"
	"slices"
)

// SectorSummary aggregates a snapshot for the dashboard overview cards.
type SectorSummary struct {
	HospitalID  string          `json:"hospitalId"`
	SectorCount SectorCount     `json:"sectorCount"`
	Cost        CostSummary     `json:"cost"`
	Beds        BedSummary      `json:"beds"`
	CareLevel   CareLevel       `json:"careLevel"`
	TotalStaff  int             `json:"totalStaff"`
	StaffByRole []RoleHeadcount `json:"staffByRole"`
	Projected   int             `json:"projectedSectors"`
}

type SectorCount struct {
	Internation int `json:"internation"`
	Assistance  int `json:"assistance"`
	Neutral     int `json:"neutral"`
}

type CostSummary struct {
	Internation float64 `json:"internation"`
	Assistance  float64 `json:"assistance"`
	Neutral     float64 `json:"neutral"`
	Total       float64 `json:"total"`
}

type BedSummary struct {
	Total     int `json:"total"`
	Evaluated int `json:"evaluated"`
	Vacant    int `json:"vacant"`
	Inactive  int `json:"inactive"`
}

type RoleHeadcount struct {
	Role     string `json:"role"`
	Quantity int    `json:"quantity"`
}

// Summarize totals costs, beds, care levels and headcount. StaffByRole is ordered by
// headcount, largest first, then by role.
func Summarize(snapshot *HospitalSectorSnapshot) SectorSummary {
	summary := SectorSummary{StaffByRole: []RoleHeadcount{}}
	if snapshot == nil {
		return summary
	}
	summary.HospitalID = snapshot.ID
	summary.SectorCount = SectorCount{
		Internation: len(snapshot.Internation),
		Assistance:  len(snapshot.Assistance),
		Neutral:     len(snapshot.Neutral),
	}

	roles := map[string]int{}
	countStaff := func(staff []StaffMember) {
		for _, member := range staff {
			roles[member.Role] += member.Quantity
			summary.TotalStaff += member.Quantity
		}
	}

	for _, sector := range snapshot.Internation {
		summary.Cost.Internation += sector.CostAmount
		summary.Beds.Total += sector.BedCount
		summary.Beds.Evaluated += sector.BedStatus.Evaluated
		summary.Beds.Vacant += sector.BedStatus.Vacant
		summary.Beds.Inactive += sector.BedStatus.Inactive
		summary.CareLevel.MinimumCare += sector.CareLevel.MinimumCare
		summary.CareLevel.IntermediateCare += sector.CareLevel.IntermediateCare
		summary.CareLevel.HighDependency += sector.CareLevel.HighDependency
		summary.CareLevel.SemiIntensive += sector.CareLevel.SemiIntensive
		summary.CareLevel.Intensive += sector.CareLevel.Intensive
		if sector.ProjectedFinal != nil {
			summary.Projected++
		}
		countStaff(sector.Staff)
	}
	for _, sector := range snapshot.Assistance {
		summary.Cost.Assistance += sector.CostAmount
		countStaff(sector.Staff)
	}
	for _, sector := range snapshot.Neutral {
		summary.Cost.Neutral += sector.CostAmount
	}
	summary.Cost.Total = summary.Cost.Internation + summary.Cost.Assistance + summary.Cost.Neutral

	for role, quantity := range roles {
		summary.StaffByRole = append(summary.StaffByRole, RoleHeadcount{Role: role, Quantity: quantity})
	}
	slices.SortFunc(summary.StaffByRole, func(a, b RoleHeadcount) int {
		if byQuantity := cmp.Compare(b.Quantity, a.Quantity); byQuantity != 0 {
			return byQuantity
		}
		return cmp.Compare(a.Role, b.Role)
	})
	return summary
}
