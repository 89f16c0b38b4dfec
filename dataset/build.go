package dataset

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/agriq-org/agriq/taxonomy"
)

// ============================================================================
// HARMONIZATION BUILDER — Two Raw Shapes → One Table
// ============================================================================
// Rainfall: daily grid values are summed into an annual total per cell,
// then cells inside each state's bounding box are combined with a
// cos(latitude) area weight. Cells with no valid observation in a year
// are excluded from both numerator and weight sum, never zero-filled.
//
// Crop rows: district/state/crop names are normalized through the
// taxonomy; unresolvable rows are dropped and counted. Duplicate keys
// keep the most recently loaded value and log a collision.
//
// The build is deterministic and side-effect-free for fixed inputs.
// ============================================================================

func build(grid *RainfallGrid, rows []CropRow, res *taxonomy.Resolver, log *zap.Logger) (*Table, error) {
	t := &Table{
		rainfall:      make(map[string]map[int]float64),
		production:    make(map[prodKey]float64),
		districtState: make(map[string]string),
	}

	if grid != nil {
		buildRainfall(t, grid, log)
	}
	buildProduction(t, rows, res, log)

	if t.stats.RainfallRecords == 0 && t.stats.CropRecords == 0 {
		return nil, fmt.Errorf("harmonized dataset build produced no records")
	}

	t.rainYears = collectYears(t.rainfall)
	t.prodYears = productionYears(t.production)

	log.Info("harmonized dataset built",
		zap.Int("rainfall_records", t.stats.RainfallRecords),
		zap.Int("crop_records", t.stats.CropRecords),
		zap.Int("dropped_rows", t.stats.DroppedRows),
		zap.Int("collisions", t.stats.Collisions),
	)
	return t, nil
}

// ── Rainfall ────────────────────────────────────────────────────────────

func buildRainfall(t *Table, grid *RainfallGrid, log *zap.Logger) {
	states := make([]string, 0, len(StateBounds))
	for s := range StateBounds {
		states = append(states, s)
	}
	sort.Strings(states)

	for _, state := range states {
		bounds := StateBounds[state]
		annual := aggregateState(grid, bounds)
		if len(annual) == 0 {
			continue
		}
		t.rainfall[state] = annual
		t.stats.RainfallRecords += len(annual)
	}

	log.Debug("rainfall grid aggregated",
		zap.Int("states", len(t.rainfall)),
		zap.Int("grid_days", len(grid.Days)),
	)
}

// aggregateState returns year → area-weighted mean annual rainfall for
// the cells inside one bounding box.
func aggregateState(grid *RainfallGrid, bounds Bounds) map[int]float64 {
	type cellYear struct {
		sum   float64
		valid bool
	}

	// Per cell, per year: annual sum of valid daily values.
	years := make(map[int]bool)
	cells := make(map[[2]int]map[int]*cellYear)
	for li, lat := range grid.Lats {
		for lj, lon := range grid.Lons {
			if !bounds.Contains(lat, lon) {
				continue
			}
			cells[[2]int{li, lj}] = make(map[int]*cellYear)
		}
	}
	if len(cells) == 0 {
		return nil
	}

	for di, day := range grid.Days {
		year := day.Year()
		for idx, byYear := range cells {
			v := grid.Values[di][idx[0]][idx[1]]
			if math.IsNaN(v) || (grid.Missing != 0 && v == grid.Missing) {
				continue
			}
			cy := byYear[year]
			if cy == nil {
				cy = &cellYear{}
				byYear[year] = cy
			}
			cy.sum += v
			cy.valid = true
			years[year] = true
		}
	}

	// Area-weighted mean of valid cells per year. Cells are combined in
	// sorted index order so the floating-point accumulation is identical
	// from build to build.
	idxs := make([][2]int, 0, len(cells))
	for idx := range cells {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool {
		if idxs[i][0] != idxs[j][0] {
			return idxs[i][0] < idxs[j][0]
		}
		return idxs[i][1] < idxs[j][1]
	})

	out := make(map[int]float64, len(years))
	for year := range years {
		var weighted, weightSum float64
		for _, idx := range idxs {
			cy := cells[idx][year]
			if cy == nil || !cy.valid {
				continue
			}
			w := math.Cos(grid.Lats[idx[0]] * math.Pi / 180)
			weighted += w * cy.sum
			weightSum += w
		}
		if weightSum > 0 {
			out[year] = weighted / weightSum
		}
	}
	return out
}

// ── Crop production ─────────────────────────────────────────────────────

func buildProduction(t *Table, rows []CropRow, res *taxonomy.Resolver, log *zap.Logger) {
	for _, row := range rows {
		if math.IsNaN(row.Production) || row.Production < 0 {
			t.stats.DroppedRows++
			continue
		}

		state, err := res.State(row.State)
		if err != nil {
			t.stats.DroppedRows++
			log.Debug("dropped crop row: unresolved state", zap.String("state", row.State))
			continue
		}
		district, err := res.District(row.District, state)
		if err != nil {
			t.stats.DroppedRows++
			log.Debug("dropped crop row: unresolved district",
				zap.String("district", row.District), zap.String("state", state.Name))
			continue
		}
		crop, err := res.Crop(row.Crop)
		if err != nil {
			t.stats.DroppedRows++
			log.Debug("dropped crop row: unresolved crop", zap.String("crop", row.Crop))
			continue
		}

		key := prodKey{District: district.Name, Year: row.Year, Crop: crop.Name}
		if _, exists := t.production[key]; exists {
			t.stats.Collisions++
			t.stats.CropRecords-- // the overwrite below re-counts it
			log.Warn("duplicate crop row, keeping latest",
				zap.String("district", key.District),
				zap.Int("year", key.Year),
				zap.String("crop", key.Crop),
			)
		}
		t.production[key] = row.Production
		t.districtState[district.Name] = state.Name
		t.stats.CropRecords++
	}
}

// ── Helpers ─────────────────────────────────────────────────────────────

func collectYears(rainfall map[string]map[int]float64) []int {
	set := make(map[int]bool)
	for _, byYear := range rainfall {
		for y := range byYear {
			set[y] = true
		}
	}
	return sortedYears(set)
}

func productionYears(production map[prodKey]float64) []int {
	set := make(map[int]bool)
	for k := range production {
		set[k.Year] = true
	}
	return sortedYears(set)
}

func sortedYears(set map[int]bool) []int {
	years := make([]int, 0, len(set))
	for y := range set {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
