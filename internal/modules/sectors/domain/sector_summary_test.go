package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	snapshot := &HospitalSectorSnapshot{
		ID: "h-1",
		Internation: []InternationSector{
			{
				CostAmount: 1000, BedCount: 10,
				BedStatus:      BedStatus{Evaluated: 6, Vacant: 3, Inactive: 1},
				CareLevel:      CareLevel{MinimumCare: 2, Intensive: 1},
				Staff:          []StaffMember{{Role: "Enfermeiro", Quantity: 4}, {Role: "Técnico", Quantity: 6}},
				ProjectedFinal: &ProjectedFinal{},
			},
			{CostAmount: 500, BedCount: 5, Staff: []StaffMember{{Role: "Enfermeiro", Quantity: 2}}},
		},
		Assistance: []AssistanceSector{{CostAmount: 250.5, Staff: []StaffMember{{Role: "Auxiliar", Quantity: 6}}}},
		Neutral:    []NeutralSector{{CostAmount: 100}},
	}

	want := SectorSummary{
		HospitalID:  "h-1",
		SectorCount: SectorCount{Internation: 2, Assistance: 1, Neutral: 1},
		Cost:        CostSummary{Internation: 1500, Assistance: 250.5, Neutral: 100, Total: 1850.5},
		Beds:        BedSummary{Total: 15, Evaluated: 6, Vacant: 3, Inactive: 1},
		CareLevel:   CareLevel{MinimumCare: 2, Intensive: 1},
		TotalStaff:  18,
		StaffByRole: []RoleHeadcount{
			{Role: "Auxiliar", Quantity: 6},
			{Role: "Enfermeiro", Quantity: 6},
			{Role: "Técnico", Quantity: 6},
		},
		Projected: 1,
	}
	if diff := cmp.Diff(want, Summarize(snapshot)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeNil(t *testing.T) {
	t.Parallel()

	summary := Summarize(nil)
	if summary.StaffByRole == nil || summary.TotalStaff != 0 {
		t.Fatalf("unexpected summary for nil snapshot: %+v", summary)
	}
}

func TestBuildSnapshotMessage(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	snapshot := &HospitalSectorSnapshot{ID: "h-9", SnapshotID: "s-1"}

	msg := BuildSnapshotMessage(snapshot, at)
	if msg.Topic != TopicSectorsSnapshot || msg.Entity != SectorsEntity || msg.Action != ActionSnapshot {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
	if msg.HospitalID() != "h-9" || msg.Metadata["snapshotId"] != "s-1" {
		t.Fatalf("unexpected routing data: %+v", msg)
	}
	if msg.Data != snapshot {
		t.Fatal("message should carry the snapshot itself")
	}
	if msg.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp should be UTC, got %v", msg.Timestamp.Location())
	}
	if BuildSnapshotMessage(nil, at) != nil {
		t.Fatal("nil snapshot should not produce a message")
	}
}

func TestMessageHospitalIDFallsBackToMetadata(t *testing.T) {
	t.Parallel()

	msg := &Message{Metadata: map[string]string{"hospitalId": " h-2 "}}
	if got := msg.HospitalID(); got != "h-2" {
		t.Fatalf("unexpected hospital id: %q", got)
	}
	if got := BuildErrorMessage("h-3", "refresh", "boom", time.Now()).HospitalID(); got != "h-3" {
		t.Fatalf("unexpected hospital id: %q", got)
	}
}
