// Package export renders a claim analysis as an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medreview/claims-reconciler/internal/common"
	"github.com/medreview/claims-reconciler/internal/reconcile"
)

// Service produces XLSX bytes for reimbursement reports.
type Service struct {
	sheet  string
	logger *slog.Logger
}

func NewService(cfg common.ExportConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = "Reconciliation"
	}
	return &Service{sheet: sheet, logger: logger}
}

// ExportAnalysisXLSX returns an XLSX workbook (as bytes) with one row per
// matched bill medicine followed by the reimbursement summary and any
// warnings.
func (s *Service) ExportAnalysisXLSX(a *reconcile.Analysis) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	sheet := s.sheet
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Bill Medicine",
		"Generic Name",
		"Matched Prescription",
		"Similarity",
		"Match Type",
		"Admissible",
		"Reason",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	for _, m := range a.Comparison.Matches {
		matched := ""
		if m.PrescriptionMatch != nil {
			matched = m.PrescriptionMatch.Name
		}

		write(1, m.BillMedicine.Name)
		write(2, m.BillMedicine.GenericName)
		write(3, matched)
		write(4, fmt.Sprintf("%.2f", m.Similarity))
		write(5, string(m.MatchType))
		write(6, m.IsAdmissible)
		write(7, truncate(m.Reason, 140))
		row++
	}

	// summary block, one label/value pair per row
	row++
	sum := a.Assessment.Summary
	summary := []struct {
		label string
		value any
	}{
		{"Policy Applied", sum.PolicyApplied},
		{"Compliance Score", fmt.Sprintf("%.1f%%", a.Comparison.Stats.ComplianceScore)},
		{"Total Bill Amount", sum.TotalBillAmount},
		{"Medicine Reimbursement", sum.MedicineReimbursement},
		{"Test Reimbursement", sum.TestReimbursement},
		{"Consultation Reimbursement", sum.ConsultationReimbursement},
		{"Total Reimbursement", sum.TotalReimbursement},
		{"Reimbursement Capped", sum.ReimbursementCapped},
	}
	for _, kv := range summary {
		write(1, kv.label)
		write(2, kv.value)
		row++
	}

	if len(a.Assessment.Warnings) > 0 {
		row++
		write(1, "Warnings")
		row++
		for _, w := range a.Assessment.Warnings {
			write(1, truncate(w, 140))
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // medicine / labels
	_ = f.SetColWidth(sheet, "B", "B", 22) // generic / values
	_ = f.SetColWidth(sheet, "C", "C", 24) // matched
	_ = f.SetColWidth(sheet, "D", "F", 12) // similarity, type, admissible
	_ = f.SetColWidth(sheet, "G", "G", 60) // reason

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"analysis_id", a.ID,
		"rows", len(a.Comparison.Matches),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
