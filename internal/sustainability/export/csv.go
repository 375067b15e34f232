package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"carbon-scribe/sustainability-backend/internal/sustainability/domain"
)

func renderCSV(r *domain.ESGReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range Rows(r) {
		record := []string{row.Section, row.Metric, formatValue(row.Value), row.Unit}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
