package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/agriq-org/agriq/dataset"
)

// ============================================================================
// CSV HELPER — Parses crop production CSV into []dataset.CropRow
// ============================================================================
// The consumer reads the CSV from wherever it lives (file, S3, an HTML
// table export). This helper converts the raw bytes into the long-form
// rows the dataset builder expects. Two layouts are accepted:
//
//   long: state, district, crop, year, production
//   wide: state, district, crop, <2018>, <2019>, ... (one column per year)
//
// Header matching is case-insensitive; spaces and hyphens collapse to
// underscores, so "State Name" matches "state_name".
// ============================================================================

// ParseCropCSV parses crop production CSV bytes into long-form rows.
// Malformed rows and unparsable cells are skipped, not fatal; the
// dataset builder reports what it dropped.
func ParseCropCSV(data []byte) ([]dataset.CropRow, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV headers: %w", err)
	}

	stateCol, districtCol, cropCol := -1, -1, -1
	yearCol, productionCol := -1, -1
	yearCols := make(map[int]int) // column index → year

	for i, h := range headers {
		switch key := toSnakeCase(strings.TrimSpace(h)); key {
		case "state", "state_name":
			stateCol = i
		case "district", "district_name":
			districtCol = i
		case "crop", "crop_name":
			cropCol = i
		case "year", "crop_year":
			yearCol = i
		case "production", "production_tonnes", "production_in_tonnes":
			productionCol = i
		default:
			if y, err := strconv.Atoi(key); err == nil && y >= 1900 && y <= 2100 {
				yearCols[i] = y
			}
		}
	}

	if stateCol < 0 || districtCol < 0 || cropCol < 0 {
		return nil, fmt.Errorf("CSV is missing a state, district or crop column")
	}
	longForm := yearCol >= 0 && productionCol >= 0
	if !longForm && len(yearCols) == 0 {
		return nil, fmt.Errorf("CSV has neither year+production columns nor per-year columns")
	}

	var rows []dataset.CropRow
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		cell := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		state, district, crop := cell(stateCol), cell(districtCol), cell(cropCol)
		if state == "" || district == "" || crop == "" {
			continue
		}

		if longForm {
			year, err := strconv.Atoi(cell(yearCol))
			if err != nil {
				continue
			}
			production, err := strconv.ParseFloat(cell(productionCol), 64)
			if err != nil {
				continue
			}
			rows = append(rows, dataset.CropRow{
				State: state, District: district, Crop: crop,
				Year: year, Production: production,
			})
			continue
		}

		for i, year := range yearCols {
			production, err := strconv.ParseFloat(cell(i), 64)
			if err != nil {
				continue // empty or NA cell
			}
			rows = append(rows, dataset.CropRow{
				State: state, District: district, Crop: crop,
				Year: year, Production: production,
			})
		}
	}

	return rows, nil
}

// CropFileLoader returns a loader that reads and parses a CSV file on
// first use.
func CropFileLoader(path string) dataset.CropLoader {
	return dataset.CropLoaderFunc(func() ([]dataset.CropRow, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read crop table %s: %w", path, err)
		}
		return ParseCropCSV(data)
	})
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
