package kpi

import (
	"math"

	"github.com/LuizZaim/SolarView-Demo/internal/models"
	"github.com/LuizZaim/SolarView-Demo/internal/series"
)

// Compute reduces an aligned timeline to the day's summary numbers.
// An empty timeline yields a zero snapshot, not an error.
func Compute(tl series.Timeline) models.KpiSnapshot {
	snap := models.KpiSnapshot{}
	if tl.Empty() {
		return snap
	}

	if energy, ok := lastValid(tl.Columns[models.ColumnEnergy]); ok {
		snap.TotalEnergy = round2(energy)
	}

	// A day with zero recorded energy has no meaningful peak; nighttime
	// near-zero Pac readings would otherwise show up as a "peak".
	if snap.TotalEnergy > 0 {
		if peak, ok := maxValid(tl.Columns[models.ColumnPower]); ok {
			snap.PeakPower = round2(peak)
		}
	}

	if soc, ok := firstValid(tl.Columns[models.ColumnBattery]); ok {
		initial := int(soc)
		snap.SocInitial = &initial
	}
	if soc, ok := lastValid(tl.Columns[models.ColumnBattery]); ok {
		final := int(soc)
		snap.SocFinal = &final
	}

	return snap
}

func firstValid(col []float64) (float64, bool) {
	for _, v := range col {
		if !math.IsNaN(v) {
			return v, true
		}
	}
	return 0, false
}

func lastValid(col []float64) (float64, bool) {
	for i := len(col) - 1; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return col[i], true
		}
	}
	return 0, false
}

func maxValid(col []float64) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, v := range col {
		if math.IsNaN(v) {
			continue
		}
		if v > best {
			best = v
		}
		found = true
	}
	return best, found
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
