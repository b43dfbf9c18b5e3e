package infrastructure

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"hospitalSectorsWs/internal/modules/sectors/domain"
)

const (
	SheetInternation = "Internacao"
	SheetAssistance  = "Assistencia"
	SheetNeutral     = "Neutro"
	SheetSummary     = "Resumo"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// SectorWorkbookExporter writes one xlsx workbook per snapshot: one sheet per sector
// kind plus a summary sheet.
type SectorWorkbookExporter struct{}

func NewSectorWorkbookExporter() *SectorWorkbookExporter {
	return &SectorWorkbookExporter{}
}

func (e *SectorWorkbookExporter) ContentType() string { return xlsxContentType }

func (e *SectorWorkbookExporter) FileName(hospitalID string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(hospitalID))
	if id == "" {
		id = "hospital"
	}
	return "setores-" + id + ".xlsx"
}

func (e *SectorWorkbookExporter) Export(w io.Writer, snapshot *domain.HospitalSectorSnapshot) error {
	if snapshot == nil {
		snapshot = domain.EmptySnapshot("")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetInternation); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetAssistance, SheetNeutral, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	writeInternation(f, snapshot.Internation)
	writeAssistance(f, snapshot.Assistance)
	writeNeutral(f, snapshot.Neutral)
	writeSummary(f, domain.Summarize(snapshot))

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, value := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, value)
	}
}

func staffTotal(staff []domain.StaffMember) int {
	total := 0
	for _, member := range staff {
		total += member.Quantity
	}
	return total
}

func writeInternation(f *excelize.File, sectors []domain.InternationSector) {
	writeRow(f, SheetInternation, 1,
		"id", "nome", "descricao", "custo", "leitos", "avaliados", "vagos", "inativos",
		"PCM", "PCI", "PADC", "PCSI", "PCIt", "pessoal", "projetado")
	for i, s := range sectors {
		writeRow(f, SheetInternation, i+2,
			s.ID, s.Name, s.Descr, s.CostAmount, s.BedCount,
			s.BedStatus.Evaluated, s.BedStatus.Vacant, s.BedStatus.Inactive,
			s.CareLevel.MinimumCare, s.CareLevel.IntermediateCare, s.CareLevel.HighDependency,
			s.CareLevel.SemiIntensive, s.CareLevel.Intensive,
			staffTotal(s.Staff), s.ProjectedFinal != nil)
	}
}

func writeAssistance(f *excelize.File, sectors []domain.AssistanceSector) {
	writeRow(f, SheetAssistance, 1, "id", "nome", "descricao", "custo", "pessoal")
	for i, s := range sectors {
		writeRow(f, SheetAssistance, i+2, s.ID, s.Name, s.Descr, s.CostAmount, s.SiteCount)
	}
}

func writeNeutral(f *excelize.File, sectors []domain.NeutralSector) {
	writeRow(f, SheetNeutral, 1, "id", "nome", "descricao", "custo", "status")
	for i, s := range sectors {
		writeRow(f, SheetNeutral, i+2, s.ID, s.Name, s.Descr, s.CostAmount, s.Status)
	}
}

func writeSummary(f *excelize.File, summary domain.SectorSummary) {
	rows := [][]any{
		{"hospital", summary.HospitalID},
		{"setores internacao", summary.SectorCount.Internation},
		{"setores assistencia", summary.SectorCount.Assistance},
		{"setores neutros", summary.SectorCount.Neutral},
		{"custo internacao", summary.Cost.Internation},
		{"custo assistencia", summary.Cost.Assistance},
		{"custo neutro", summary.Cost.Neutral},
		{"custo total", summary.Cost.Total},
		{"leitos", summary.Beds.Total},
		{"leitos avaliados", summary.Beds.Evaluated},
		{"leitos vagos", summary.Beds.Vacant},
		{"leitos inativos", summary.Beds.Inactive},
		{"pessoal total", summary.TotalStaff},
	}
	for i, row := range rows {
		writeRow(f, SheetSummary, i+1, row...)
	}

	start := len(rows) + 2
	writeRow(f, SheetSummary, start, "cargo", "quantidade")
	for i, role := range summary.StaffByRole {
		writeRow(f, SheetSummary, start+i+1, role.Role, role.Quantity)
	}
}
