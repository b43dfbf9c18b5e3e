package infrastructure

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

func TestSectorWorkbookExporterWritesSheets(t *testing.T) {
	t.Parallel()

	snapshot := &domain.HospitalSectorSnapshot{
		ID: "h-1",
		Internation: []domain.InternationSector{{
			ID: "u1", Name: "UTI", CostAmount: 1000, BedCount: 10,
			BedStatus:      domain.BedStatus{Evaluated: 8, Vacant: 2},
			Staff:          []domain.StaffMember{{Role: "Enfermeiro", Quantity: 4}},
			ProjectedFinal: &domain.ProjectedFinal{},
		}},
		Assistance: []domain.AssistanceSector{{ID: "a1", Name: "Ambulatorio", CostAmount: 250.5, SiteCount: 3}},
		Neutral:    []domain.NeutralSector{{ID: "n1", Name: "Lavanderia", CostAmount: 100, Status: "ativo"}},
	}

	var buf bytes.Buffer
	exporter := NewSectorWorkbookExporter()
	if err := exporter.Export(&buf, snapshot); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{SheetInternation, SheetAssistance, SheetNeutral, SheetSummary}, f.GetSheetList()); diff != "" {
		t.Fatalf("sheet list mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows(SheetInternation)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("internation rows = %d, want 2", len(rows))
	}
	if rows[1][0] != "u1" || rows[1][3] != "1000" || rows[1][4] != "10" || rows[1][13] != "4" || rows[1][14] != "TRUE" {
		t.Fatalf("unexpected internation row: %v", rows[1])
	}

	assistance, _ := f.GetRows(SheetAssistance)
	if diff := cmp.Diff([]string{"a1", "Ambulatorio", "", "250.5", "3"}, assistance[1]); diff != "" {
		t.Fatalf("assistance row mismatch (-want +got):\n%s", diff)
	}

	total, err := f.GetCellValue(SheetSummary, "B8")
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if total != "1350.5" {
		t.Fatalf("total cost = %s, want 1350.5", total)
	}
}

func TestSectorWorkbookExporterEmptySnapshot(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewSectorWorkbookExporter().Export(&buf, domain.EmptySnapshot("h-2")); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, _ := f.GetRows(SheetNeutral)
	if len(rows) != 1 {
		t.Fatalf("empty snapshot should only have a header row, got %d rows", len(rows))
	}
}

func TestSectorWorkbookExporterFileName(t *testing.T) {
	t.Parallel()

	exporter := NewSectorWorkbookExporter()
	tests := map[string]string{
		"h-1":     "setores-h-1.xlsx",
		" a/b c ": "setores-a_b_c.xlsx",
		"":        "setores-hospital.xlsx",
		"hosp_42": "setores-hosp_42.xlsx",
	}
	for input, want := range tests {
		if got := exporter.FileName(input); got != want {
			t.Fatalf("FileName(%q) = %q, want %q", input, got, want)
		}
	}
}
