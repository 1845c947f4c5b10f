package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReportRow is one ranked candidate in the match report.
type ReportRow struct {
	Rank        int
	CVID        string
	DisplayName string
	Score       float64
	Strengths   []string
	Gaps        []string
}

// ReportMeta describes the run the report was generated from.
type ReportMeta struct {
	RunID       string
	JDID        string
	RequestedAt time.Time
	CompletedAt time.Time
	CVCount     int
}

// MatchReport renders a ranked-candidates workbook and returns the xlsx
// bytes. Rows are re-sorted by score so the sheet order never depends on
// upstream ordering.
func MatchReport(meta ReportMeta, rows []ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ranked Candidates"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	headers := []string{"Rank", "Candidate", "CV ID", "Score", "Strengths", "Gaps"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	endHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", endHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	sorted := make([]ReportRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	for i, row := range sorted {
		rowIdx := i + 2
		values := []any{
			i + 1,
			row.DisplayName,
			row.CVID,
			row.Score,
			strings.Join(row.Strengths, "; "),
			strings.Join(row.Gaps, "; "),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", rowIdx, err)
			}
		}
	}

	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "C", 24)
	f.SetColWidth(sheet, "E", "F", 48)

	metaSheet := "Run"
	if _, err := f.NewSheet(metaSheet); err != nil {
		return nil, fmt.Errorf("create meta sheet: %w", err)
	}
	metaRows := [][2]any{
		{"Run ID", meta.RunID},
		{"Job Description", meta.JDID},
		{"CVs Matched", meta.CVCount},
		{"Requested At", meta.RequestedAt.Format(time.RFC3339)},
		{"Completed At", meta.CompletedAt.Format(time.RFC3339)},
	}
	for i, pair := range metaRows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(metaSheet, labelCell, pair[0])
		f.SetCellValue(metaSheet, valueCell, pair[1])
	}
	f.SetColWidth(metaSheet, "A", "B", 28)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
