package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spotter-eld/hos-service/internal/model"
	"github.com/spotter-eld/hos-service/internal/service"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// PeriodReport is the workbook input: one summary row per day in the period
// plus the driver's violation history.
type PeriodReport struct {
	DriverName string
	From       time.Time
	To         time.Time
	Summaries  []model.DailySummary
	Violations []model.Violation
}

func (g *Generator) Generate(report PeriodReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Daily Summaries"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummaries(file, summarySheet, report); err != nil {
		return nil, err
	}

	violationSheet := "Violations"
	if _, err := file.NewSheet(violationSheet); err != nil {
		return nil, err
	}
	if err := g.writeViolations(file, violationSheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummaries(file *excelize.File, sheet string, report PeriodReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Driver")
	set("B1", report.DriverName)
	set("A2", "Period Start")
	set("B2", report.From.Format("2006-01-02"))
	set("A3", "Period End")
	set("B3", report.To.Format("2006-01-02"))

	headerRow := 5
	headers := []string{"Date", "Driving", "On Duty", "Off Duty", "Sleeper Berth", "Compliant", "Certified"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, summary := range report.Summaries {
		row := headerRow + 1 + i
		compliant := "NO"
		if service.IsCompliant(&summary) {
			compliant = "YES"
		}
		certified := "NO"
		if summary.IsCertified {
			certified = "YES"
		}
		values := []interface{}{
			summary.Date.Format("2006-01-02"),
			summary.TotalDrivingHours,
			summary.TotalOnDutyHours,
			summary.TotalOffDutyHours,
			summary.TotalSleeperHours,
			compliant,
			certified,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			set(cell, value)
		}
	}
	return nil
}

func (g *Generator) writeViolations(file *excelize.File, sheet string, report PeriodReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Detected", "Type", "Severity", "Description", "Resolved"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		set(cell, header)
	}

	for i, violation := range report.Violations {
		row := 2 + i
		resolved := "NO"
		if violation.IsResolved {
			resolved = "YES"
		}
		values := []interface{}{
			violation.DetectedAt.Format("2006-01-02 15:04"),
			string(violation.ViolationType),
			string(violation.Severity),
			violation.Description,
			resolved,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			set(cell, value)
		}
	}

	if len(report.Violations) == 0 {
		set("A2", fmt.Sprintf("No violations recorded for %s", report.DriverName))
	}
	return nil
}
