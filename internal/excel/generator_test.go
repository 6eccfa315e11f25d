package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spotter-eld/hos-service/internal/model"
)

func TestGenerateReflectsComplianceRule(t *testing.T) {
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	report := PeriodReport{
		DriverName: "Alex Carter",
		From:       date,
		To:         date.AddDate(0, 0, 1),
		Summaries: []model.DailySummary{
			{
				Date:              date,
				TotalDrivingHours: 12,
				TotalOffDutyHours: 12,
			},
			{
				Date:              date.AddDate(0, 0, 1),
				TotalDrivingHours: 8,
				TotalOnDutyHours:  2,
				TotalOffDutyHours: 14,
			},
		},
	}

	content, err := NewGenerator().Generate(report)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	// Compliant column, first and second data rows.
	over, err := file.GetCellValue("Daily Summaries", "F6")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if over != "NO" {
		t.Errorf("12 driving hours marked %q, want NO", over)
	}
	ok, err := file.GetCellValue("Daily Summaries", "F7")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if ok != "YES" {
		t.Errorf("compliant day marked %q, want YES", ok)
	}

	placeholder, err := file.GetCellValue("Violations", "A2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if placeholder == "" {
		t.Error("violations sheet should note when no violations exist")
	}
}
