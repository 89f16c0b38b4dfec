package dataset

import (
	"time"
)

// ============================================================================
// DATASET TYPES — Raw Loader Contracts and Harmonized Records
// ============================================================================
// The core never parses file bytes. Loaders hand over already-decoded
// structures (§ external interfaces); the builder reconciles them into
// HarmonizedRecord rows keyed by (region, year, crop, metric).
// ============================================================================

// MetricKind names the two harmonized measures.
type MetricKind string

const (
	MetricRainfallMM       MetricKind = "rainfall_mm"
	MetricProductionTonnes MetricKind = "production_tonnes"
)

// Record is one reconciled fact. Crop is empty for rainfall records.
// Invariant: at most one record exists per (Region, Year, Crop, Metric).
type Record struct {
	Region string     `json:"region"` // canonical taxonomy name
	Year   int        `json:"year"`
	Crop   string     `json:"crop,omitempty"`
	Metric MetricKind `json:"metric"`
	Value  float64    `json:"value"`
}

// RainfallGrid is a decoded spatial grid of daily rainfall values.
// Values is indexed [day][lat][lon]. NaN always marks a missing
// observation; a non-zero Missing sentinel (e.g. -999) marks missing
// too. Missing is ignored when zero, since zero is a legal rainfall value.
type RainfallGrid struct {
	Lats    []float64
	Lons    []float64
	Days    []time.Time
	Values  [][][]float64
	Missing float64
}

// CropRow is one decoded row of the district crop production table,
// already reshaped to long form by the loader. Names are raw source
// spellings; the builder normalizes them through the taxonomy.
type CropRow struct {
	State      string
	District   string
	Crop       string
	Year       int
	Production float64 // tonnes
}

// RainfallLoader decodes the rainfall source into a grid.
type RainfallLoader interface {
	LoadRainfall() (*RainfallGrid, error)
}

// CropLoader decodes the crop production source into rows.
type CropLoader interface {
	LoadCropTable() ([]CropRow, error)
}

// RainfallLoaderFunc adapts a function to the RainfallLoader interface.
type RainfallLoaderFunc func() (*RainfallGrid, error)

func (f RainfallLoaderFunc) LoadRainfall() (*RainfallGrid, error) { return f() }

// CropLoaderFunc adapts a function to the CropLoader interface.
type CropLoaderFunc func() ([]CropRow, error)

func (f CropLoaderFunc) LoadCropTable() ([]CropRow, error) { return f() }

// DistrictValue pairs a district with an aggregated production figure.
type DistrictValue struct {
	District   string  `json:"district"`
	Production float64 `json:"production"`
}

// BuildStats summarizes one harmonization run.
type BuildStats struct {
	RainfallRecords int // (state, year) rainfall rows emitted
	CropRecords     int // (district, year, crop) production rows emitted
	DroppedRows     int // crop rows whose region could not be resolved
	Collisions      int // duplicate keys resolved by keeping the latest row
}
