package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

func testReport() *domain.ESGReport {
	return &domain.ESGReport{
		ID:                  "r-1",
		WarehouseID:         "WH-1",
		Period:              domain.ReportingPeriodMonthly,
		ReportMonth:         domain.YearMonth{Year: 2024, Month: time.March},
		Year:                2024,
		GeneratedAt:         time.Date(2024, time.April, 1, 2, 0, 0, 0, time.UTC),
		TotalCO2eScope1Kg:   100,
		TotalCO2eScope2Kg:   50,
		TotalCO2eScope3Kg:   50,
		ComplianceCertified: true,
		AdditionalMetrics:   map[string]interface{}{},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"excel", FormatExcel, false},
		{"xlsx", FormatExcel, false},
		{" pdf ", FormatPDF, false},
		{"docx", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "esg-report-WH-1-2024-03.xlsx", Filename(testReport(), FormatExcel))
	assert.Equal(t, "esg-report-WH-1-2024-03.csv", Filename(testReport(), FormatCSV))
}

func TestRender_CSV(t *testing.T) {
	doc, err := Render(testReport(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", doc.ContentType)

	records, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(Rows(testReport()))+1)
	assert.Equal(t, columns, records[0])
	assert.Contains(t, records, []string{"Environmental", "Total emissions", "200.00", "kg CO2e"})
	assert.Contains(t, records, []string{"Governance", "Compliance certified", "yes", ""})
}

func TestRender_Excel(t *testing.T) {
	doc, err := Render(testReport(), FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, FormatExcel.ContentType(), doc.ContentType)

	file, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer file.Close()

	header, err := file.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Section", header)

	warehouse, err := file.GetCellValue(sheetName, "C3")
	require.NoError(t, err)
	assert.Equal(t, "WH-1", warehouse)
}

func TestRender_PDF(t *testing.T) {
	doc, err := Render(testReport(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(nil, FormatCSV)
	assert.Error(t, err)

	_, err = Render(testReport(), Format("docx"))
	assert.Error(t, err)
}
