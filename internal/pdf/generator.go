package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/spotter-eld/hos-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// DailyLogDocument carries everything the daily log sheet renders.
type DailyLogDocument struct {
	DriverName string
	Company    string
	License    string
	Date       time.Time
	Summary    model.DailySummary
	Entries    []model.DutyInterval
	Compliant  bool
}

func (g *Generator) Generate(doc DailyLogDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("HOS Daily Log - %s", formatDate(doc.Date)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "DRIVER INFORMATION", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	infoRows := [][2]string{
		{"Driver Name:", safeValue(doc.DriverName)},
		{"Date:", doc.Date.Format("January 2, 2006")},
		{"Company:", safeValue(doc.Company)},
		{"License Number:", safeValue(doc.License)},
	}
	for _, row := range infoRows {
		pdf.CellFormat(50, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "DAILY SUMMARY", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	compliant := "NO"
	if doc.Compliant {
		compliant = "YES"
	}
	summaryRows := [][2]string{
		{"Total Driving Hours:", fmt.Sprintf("%.1f", doc.Summary.TotalDrivingHours)},
		{"Total On-Duty Hours:", fmt.Sprintf("%.1f", doc.Summary.TotalOnDutyHours)},
		{"Total Off-Duty Hours:", fmt.Sprintf("%.1f", doc.Summary.TotalOffDutyHours)},
		{"Total Sleeper Berth Hours:", fmt.Sprintf("%.1f", doc.Summary.TotalSleeperHours)},
		{"HOS Compliant:", compliant},
	}
	for _, row := range summaryRows {
		pdf.CellFormat(60, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(doc.Entries) > 0 {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "DETAILED LOG ENTRIES", "", 1, "L", false, 0, "")

		headers := []string{"Time", "Duty Status", "Location", "Vehicle", "Odometer", "Hours"}
		widths := []float64{30, 35, 50, 25, 25, 15}
		drawTableRow(pdf, g.fontName, headers, widths, true)

		for _, entry := range doc.Entries {
			row := []string{
				formatTimeRange(entry),
				statusLabel(entry.DutyStatus),
				entry.Location,
				entry.VehicleInfo,
				formatOdometer(entry),
				fmt.Sprintf("%.1f", entry.TotalHours),
			}
			drawTableRow(pdf, g.fontName, row, widths, false)
		}
	} else {
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "NO LOG ENTRIES FOUND FOR THIS DATE", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 6, "No driving activity was recorded for this date.", "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "CERTIFICATION", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.MultiCell(0, 5,
		"I hereby certify that the information contained herein is true and correct to the best of my knowledge. "+
			"I understand that any falsification of this record may result in civil and/or criminal penalties.",
		"", "L", false)
	pdf.Ln(12)

	pdf.CellFormat(110, 7, "Driver Signature: ______________________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Date: _______________", "", 1, "L", false, 0, "")
	pdf.Ln(6)
	pdf.CellFormat(110, 7, "Motor Carrier Signature: ________________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Date: _______________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	size := 8.0
	if header {
		style = "B"
		size = 9
	}
	pdf.SetFont(fontName, style, size)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func statusLabel(status model.DutyStatus) string {
	words := strings.Split(string(status), "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

func formatTimeRange(entry model.DutyInterval) string {
	start := entry.StartTime.Format("15:04")
	if entry.EndTime == nil {
		return start
	}
	return start + "-" + entry.EndTime.Format("15:04")
}

func formatOdometer(entry model.DutyInterval) string {
	if entry.OdometerStart == nil && entry.OdometerEnd == nil {
		return ""
	}
	start := ""
	if entry.OdometerStart != nil {
		start = fmt.Sprintf("%.1f", *entry.OdometerStart)
	}
	end := ""
	if entry.OdometerEnd != nil {
		end = fmt.Sprintf("%.1f", *entry.OdometerEnd)
	}
	return start + "-" + end
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
