package export

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/contract-analyzer/internal/entity"
)

// Row is one batch slot handed to the exporter. Result is nil for the
// pairs that failed; those still occupy a row so reviewers see the gap.
type Row struct {
	OriginalFile  string
	AmendmentFile string
	Result        *entity.ComparisonResult
	Err           error
}

// Service produces XLSX review workbooks from comparison results.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// BuildComparisonXLSX returns an XLSX workbook (as bytes) summarizing a batch
// of comparisons for legal-review hand-off.
func (s *Service) BuildComparisonXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Comparisons"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Original",
		"Amendment",
		"Status",
		"Session ID",
		"Sections Changed",
		"Topics Touched",
		"Confidence",
		"Summary",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	rowIdx := 2
	for _, r := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.OriginalFile)
		write(2, r.AmendmentFile)

		if r.Result == nil {
			write(3, "FAILED")
			if r.Err != nil {
				write(9, truncate(r.Err.Error(), 200))
			}
			rowIdx++
			continue
		}

		write(3, "OK")
		if sid, ok := r.Result.ProcessingMetadata["session_id"].(string); ok {
			write(4, sid)
		}
		write(5, strings.Join(r.Result.Analysis.SectionsChanged, "; "))
		write(6, strings.Join(r.Result.Analysis.TopicsTouched, "; "))
		if r.Result.Analysis.ConfidenceScore != nil {
			write(7, fmt.Sprintf("%.2f", *r.Result.Analysis.ConfidenceScore))
		}
		write(8, truncate(r.Result.Analysis.SummaryOfTheChange, 500))
		rowIdx++
	}

	// Widen the text-heavy columns
	_ = f.SetColWidth(sheet, "A", "B", 28)
	_ = f.SetColWidth(sheet, "E", "F", 40)
	_ = f.SetColWidth(sheet, "H", "H", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok", "rows", len(rows), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
