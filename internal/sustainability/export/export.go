// Package export renders ESG reports as downloadable CSV, Excel and PDF files.
package export

import (
	"fmt"
	"strings"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

// Format is an export file format
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

// ParseFormat accepts csv, excel (or xlsx) and pdf, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Extension returns the file extension of the format without the dot
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// Document is a rendered report file
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Row is one line of the flattened report
type Row struct {
	Section string
	Metric  string
	Value   interface{}
	Unit    string
}

var columns = []string{"Section", "Metric", "Value", "Unit"}

// Rows flattens a report into section, metric, value and unit lines
func Rows(r *domain.ESGReport) []Row {
	rows := []Row{
		{"Report", "Report ID", r.ID, ""},
		{"Report", "Warehouse", r.WarehouseID, ""},
		{"Report", "Period", string(r.Period), ""},
		{"Report", "Report month", r.ReportMonth.String(), ""},
		{"Report", "Generated at", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05"), "UTC"},

		{"Environmental", "Scope 1 emissions", r.TotalCO2eScope1Kg, "kg CO2e"},
		{"Environmental", "Scope 2 emissions", r.TotalCO2eScope2Kg, "kg CO2e"},
		{"Environmental", "Scope 3 emissions", r.TotalCO2eScope3Kg, "kg CO2e"},
		{"Environmental", "Total emissions", r.TotalCO2eKg(), "kg CO2e"},
		{"Environmental", "Total emissions", r.TotalCO2eTons(), "t CO2e"},
		{"Environmental", "Energy consumed", r.TotalEnergyKWh, "kWh"},
		{"Environmental", "Renewable energy", r.RenewableEnergyPercentage, "%"},
		{"Environmental", "Water usage", r.WaterUsageCubicMeters, "m3"},
		{"Environmental", "Waste generated", r.WasteGeneratedTons, "t"},
		{"Environmental", "Waste recycled", r.WasteRecycledPercentage, "%"},

		{"Social", "Workforce", r.WorkforceCount, "employees"},
		{"Social", "Workplace safety score", r.WorkplaceSafetyScore, ""},
		{"Social", "Training hours per employee", r.TrainingHoursPerEmployee, "h"},

		{"Governance", "Compliance certified", r.ComplianceCertified, ""},
		{"Governance", "Audits passed", r.AuditsPassed, ""},
	}
	return rows
}

// Filename builds the download name of a report in the given format
func Filename(r *domain.ESGReport, f Format) string {
	return fmt.Sprintf("esg-report-%s-%s.%s", r.WarehouseID, r.ReportMonth.String(), f.Extension())
}

// Render renders report in format
func Render(r *domain.ESGReport, f Format) (*Document, error) {
	if r == nil {
		return nil, fmt.Errorf("no report to export")
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = renderCSV(r)
	case FormatExcel:
		data, err = renderExcel(r)
	case FormatPDF:
		data, err = renderPDF(r)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s export: %w", f, err)
	}

	return &Document{
		Filename:    Filename(r, f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

func formatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.2f", v)
	case bool:
		if v {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprintf("%v", v)
	}
}
