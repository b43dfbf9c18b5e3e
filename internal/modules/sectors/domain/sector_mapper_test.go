package domain

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decodePayload(t *testing.T, body string) any {
	t.Helper()
	decoder := json.NewDecoder(bytes.NewBufferString(body))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		t.Fatalf("invalid fixture: %v", err)
	}
	return payload
}

func buildFromJSON(t *testing.T, hospitalID, body string) *HospitalSectorSnapshot {
	t.Helper()
	raw, err := ParseRawSnapshot(decodePayload(t, body))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return NewSectorMapper(nil).BuildSnapshot(hospitalID, raw)
}

func TestBuildSnapshotInternationWithoutProjection(t *testing.T) {
	t.Parallel()

	snapshot := buildFromJSON(t, "h-1", `{
		"id": "snap-9",
		"snapshot": {"dados": {
			"internation": [{"id": "u1", "costAmount": "1.000,00", "staff": [{"role": "Enfermeiro", "quantity": 5}]}]
		}}
	}`)

	want := &HospitalSectorSnapshot{
		ID:         "h-1",
		SnapshotID: "snap-9",
		Internation: []InternationSector{{
			ID:         "u1",
			CostAmount: 1000,
			Staff:      []StaffMember{{Role: "Enfermeiro", Quantity: 5}},
		}},
		Assistance: []AssistanceSector{},
		Neutral:    []NeutralSector{},
	}
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if snapshot.Internation[0].ProjectedFinal != nil {
		t.Fatal("projectedFinal must be nil without a match")
	}
}

func TestMapInternationSectorPrefersDimensioning(t *testing.T) {
	t.Parallel()

	snapshot := buildFromJSON(t, "h-1", `{
		"snapshot": {"dados": {
			"internation": [{
				"id": "u1", "name": "UTI Adulto", "costAmount": 2500.5, "bedCount": 10,
				"bedStatus": {"evaluated": 1, "vacant": 2, "inactive": 3},
				"careLevel": {"minimumCare": 9, "intensive": 4}
			}],
			"projetadoFinal": {"internacao": [
				{"unidadeId": "u1", "cargos": [{"cargoId": "c1", "projetadoFinal": 12}], "periodoTravado": {"inicio": "2026-01-01"},
				 "dimensionamento": {"totalLeitos": 20, "leitosVagos": 6, "distribuicaoClassificacao": {"PCM": 5, "PCI": 4, "PADC": 3, "PCSI": 2}}},
				{"unidadeId": "u1", "dimensionamento": {"totalLeitos": 99}}
			]}
		}}
	}`)

	got := snapshot.Internation[0]
	if got.BedCount != 20 {
		t.Fatalf("bedCount should come from dimensionamento.totalLeitos, got %d", got.BedCount)
	}
	wantStatus := BedStatus{Evaluated: 1, Vacant: 6, Inactive: 3}
	if diff := cmp.Diff(wantStatus, got.BedStatus); diff != "" {
		t.Fatalf("bed status mismatch (-want +got):\n%s", diff)
	}
	wantCare := CareLevel{MinimumCare: 5, IntermediateCare: 4, HighDependency: 3, SemiIntensive: 2, Intensive: 4}
	if diff := cmp.Diff(wantCare, got.CareLevel); diff != "" {
		t.Fatalf("care level mismatch (-want +got):\n%s", diff)
	}
	if got.ProjectedFinal == nil {
		t.Fatal("expected projectedFinal")
	}
	if string(got.ProjectedFinal.PeriodoTravado) != `{"inicio":"2026-01-01"}` {
		t.Fatalf("unexpected locked period: %s", got.ProjectedFinal.PeriodoTravado)
	}
	if string(got.ProjectedFinal.Cargos) != `[{"cargoId":"c1","projetadoFinal":12}]` {
		t.Fatalf("unexpected roles: %s", got.ProjectedFinal.Cargos)
	}
	if got.CostAmount != 2500.5 {
		t.Fatalf("numeric cost should pass through, got %v", got.CostAmount)
	}
}

func TestMapInternationSectorFallsBackWithoutDimensioning(t *testing.T) {
	t.Parallel()

	raw := RawSector{ID: "u2", BedCount: intPtr(8), BedStatus: RawBedStatus{Vacant: intPtr(2)}}
	projections := []RawProjection{{UnitID: "u2", Roles: json.RawMessage(`[]`)}}

	got := NewSectorMapper(nil).MapInternationSector(raw, projections)
	if got.BedCount != 8 || got.BedStatus.Vacant != 2 || got.BedStatus.Evaluated != 0 {
		t.Fatalf("expected sector fields, got bedCount=%d status=%+v", got.BedCount, got.BedStatus)
	}
	if got.ProjectedFinal == nil || string(got.ProjectedFinal.Cargos) != `[]` || got.ProjectedFinal.Dimensionamento != nil {
		t.Fatalf("unexpected projectedFinal: %+v", got.ProjectedFinal)
	}
	if len(got.Staff) != 0 || got.Staff == nil {
		t.Fatalf("staff should default to an empty list, got %#v", got.Staff)
	}
}

func TestMapAssistanceSectorSumsHeadcount(t *testing.T) {
	t.Parallel()

	snapshot := buildFromJSON(t, "h-1", `{"snapshot": {"dados": {"assistance": [
		{"id": "a1", "costAmount": 500, "staff": [{"role": "Téc.", "quantity": 3}, {"role": "Enf.", "quantity": 2}, {"quantity": "x"}]}
	]}}}`)

	got := snapshot.Assistance[0]
	if got.SiteCount != 5 {
		t.Fatalf("siteCount = %d, want 5", got.SiteCount)
	}
	if diff := cmp.Diff([]Area{{Name: TotalAreaName, Quantity: 5}}, got.Areas); diff != "" {
		t.Fatalf("areas mismatch (-want +got):\n%s", diff)
	}
	if got.Staff[2].Role != UnknownRole || got.Staff[2].Quantity != 0 {
		t.Fatalf("missing role/quantity not defaulted: %+v", got.Staff[2])
	}
	if got.CostAmount != 500 {
		t.Fatalf("unexpected cost: %v", got.CostAmount)
	}
}

func TestMapNeutralSectorDefaultsStatus(t *testing.T) {
	t.Parallel()

	snapshot := buildFromJSON(t, "h-1", `{"snapshot": {"dados": {"neutral": [
		{"id": "n1", "name": "Lavanderia", "costAmount": "R$ 1.234,56"},
		{"id": "n2", "status": "inativo", "costAmount": null}
	]}}}`)

	want := []NeutralSector{
		{ID: "n1", Name: "Lavanderia", CostAmount: 1234.56, Status: DefaultNeutralStatus},
		{ID: "n2", Status: "inativo"},
	}
	if diff := cmp.Diff(want, snapshot.Neutral); diff != "" {
		t.Fatalf("neutral mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSnapshotToleratesMalformedSections(t *testing.T) {
	t.Parallel()

	snapshot := buildFromJSON(t, "h-3", `{"snapshot": {"dados": {
		"internation": {"not": "a list"},
		"assistance": [42, "x", {"id": "a1", "staff": "none"}],
		"neutral": null,
		"projetadoFinal": {"internacao": "broken"}
	}}}`)

	if len(snapshot.Internation) != 0 || len(snapshot.Neutral) != 0 {
		t.Fatalf("non-list sections should map to empty: %+v", snapshot)
	}
	if len(snapshot.Assistance) != 1 || snapshot.Assistance[0].SiteCount != 0 {
		t.Fatalf("unexpected assistance: %+v", snapshot.Assistance)
	}
}

func TestBuildSnapshotWithoutDados(t *testing.T) {
	t.Parallel()

	snapshot := buildFromJSON(t, "h-4", `{"id": "snap"}`)
	want := EmptySnapshot("h-4")
	want.SnapshotID = "snap"
	if diff := cmp.Diff(want, snapshot); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRawSnapshotRejectsNonObject(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`[]`, `"text"`, `null`, `12`} {
		if _, err := ParseRawSnapshot(decodePayload(t, body)); err != ErrMalformedSnapshot {
			t.Fatalf("ParseRawSnapshot(%s) err = %v, want ErrMalformedSnapshot", body, err)
		}
	}
}

func TestParseRawSnapshotUnwrapsDataEnvelope(t *testing.T) {
	t.Parallel()

	raw, err := ParseRawSnapshot(decodePayload(t, `{"data": {"id": 7, "snapshot": {"dados": {"neutral": [{"id": 3}]}}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.ID != "7" || len(raw.Neutral) != 1 || raw.Neutral[0].ID != "3" {
		t.Fatalf("unexpected raw snapshot: %+v", raw)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := &HospitalSectorSnapshot{
		ID: "h-1",
		Internation: []InternationSector{{
			ID:             "u1",
			Staff:          []StaffMember{{Role: "Enf.", Quantity: 1}},
			ProjectedFinal: &ProjectedFinal{Cargos: json.RawMessage(`[1]`)},
		}},
		Assistance: []AssistanceSector{{ID: "a1", Areas: []Area{{Name: "Total", Quantity: 1}}}},
		Neutral:    []NeutralSector{{ID: "n1"}},
	}

	cloned := original.Clone()
	if diff := cmp.Diff(original.Internation, cloned.Internation); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	cloned.Internation[0].Staff[0].Quantity = 99
	cloned.Internation[0].ProjectedFinal.Cargos[1] = '2'
	cloned.Assistance[0].Areas[0].Quantity = 42
	cloned.Neutral[0].ID = "changed"

	if original.Internation[0].Staff[0].Quantity != 1 ||
		string(original.Internation[0].ProjectedFinal.Cargos) != `[1]` ||
		original.Assistance[0].Areas[0].Quantity != 1 ||
		original.Neutral[0].ID != "n1" {
		t.Fatalf("clone shares memory with original: %+v", original)
	}
}

func intPtr(v int) *int { return &v }
