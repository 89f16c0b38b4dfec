package helpers

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/agriq-org/agriq/dataset"
)

// ============================================================================
// GRID HELPER — Parses a decoded rainfall grid from JSON
// ============================================================================
// NetCDF decoding happens outside the core; whatever decodes the source
// exports this JSON shape, and the helper lifts it into the loader
// contract.
//
//	{
//	  "lats": [9.0, 9.25],
//	  "lons": [75.0, 75.25],
//	  "days": ["2022-06-01", ...],
//	  "values": [[[1.5, 0.0], ...], ...],   // [day][lat][lon]
//	  "missing": -999
//	}
// ============================================================================

type gridFile struct {
	Lats    []float64     `json:"lats"`
	Lons    []float64     `json:"lons"`
	Days    []string      `json:"days"`
	Values  [][][]float64 `json:"values"`
	Missing float64       `json:"missing"`
}

// ParseRainfallJSON parses a decoded rainfall grid. Dimension
// mismatches are fatal; a grid that lies about its shape cannot be
// aggregated safely.
func ParseRainfallJSON(data []byte) (*dataset.RainfallGrid, error) {
	var f gridFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode rainfall grid: %w", err)
	}

	if len(f.Values) != len(f.Days) {
		return nil, fmt.Errorf("rainfall grid has %d day slices for %d days", len(f.Values), len(f.Days))
	}
	for d, slice := range f.Values {
		if len(slice) != len(f.Lats) {
			return nil, fmt.Errorf("day %d has %d latitude rows, want %d", d, len(slice), len(f.Lats))
		}
		for _, lonRow := range slice {
			if len(lonRow) != len(f.Lons) {
				return nil, fmt.Errorf("day %d has a row of %d longitudes, want %d", d, len(lonRow), len(f.Lons))
			}
		}
	}

	days := make([]time.Time, len(f.Days))
	for i, s := range f.Days {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, fmt.Errorf("day %q: %w", s, err)
		}
		days[i] = t
	}

	return &dataset.RainfallGrid{
		Lats:    f.Lats,
		Lons:    f.Lons,
		Days:    days,
		Values:  f.Values,
		Missing: f.Missing,
	}, nil
}

// RainfallFileLoader returns a loader that reads and parses a grid JSON
// file on first use.
func RainfallFileLoader(path string) dataset.RainfallLoader {
	return dataset.RainfallLoaderFunc(func() (*dataset.RainfallGrid, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read rainfall grid %s: %w", path, err)
		}
		return ParseRainfallJSON(data)
	})
}
