package series

import (
	"math"
	"sort"
	"time"
)

// Timeline is the result of aligning several series onto one set of
// timestamps. Every column has exactly len(Timestamps) entries.
type Timeline struct {
	Timestamps []time.Time
	Columns    map[string][]float64
}

// Empty reports whether the timeline carries no data at all.
func (t Timeline) Empty() bool {
	return len(t.Timestamps) == 0
}

// Align merges independently-sampled series onto a common timeline.
//
// The first non-empty series in input order becomes the reference: its
// timestamps are the timeline. Every other series is joined by nearest
// timestamp within tolerance; cells with no match within tolerance are gaps.
// Gaps are then forward-filled and any remaining leading gaps back-filled.
// A column still entirely empty after fill is omitted. Callers must pass
// series in a fixed order so the reference choice is deterministic.
func Align(list []Series, tolerance time.Duration) Timeline {
	tl := Timeline{Columns: make(map[string][]float64)}

	ref := -1
	for i, s := range list {
		if !s.Empty() {
			ref = i
			break
		}
	}
	if ref < 0 {
		return tl
	}

	refSeries := list[ref]
	tl.Timestamps = make([]time.Time, len(refSeries.Samples))
	refCol := make([]float64, len(refSeries.Samples))
	for i, sample := range refSeries.Samples {
		tl.Timestamps[i] = sample.Timestamp
		refCol[i] = sample.Value
	}
	tl.Columns[refSeries.Metric] = refCol

	for i, s := range list {
		if i == ref || s.Empty() {
			continue
		}
		tl.Columns[s.Metric] = joinNearest(tl.Timestamps, s.Samples, tolerance)
	}

	for name, col := range tl.Columns {
		fillForward(col)
		fillBackward(col)
		if allGaps(col) {
			delete(tl.Columns, name)
		}
	}

	return tl
}

// joinNearest maps each reference timestamp to the value of the nearest sample
// within tolerance, or a gap (NaN) when none qualifies.
func joinNearest(timestamps []time.Time, samples []Sample, tolerance time.Duration) []float64 {
	col := make([]float64, len(timestamps))
	for i, ts := range timestamps {
		// First sample at or after ts.
		j := sort.Search(len(samples), func(k int) bool {
			return !samples[k].Timestamp.Before(ts)
		})

		best := -1
		var bestDiff time.Duration
		for _, cand := range []int{j - 1, j} {
			if cand < 0 || cand >= len(samples) {
				continue
			}
			diff := samples[cand].Timestamp.Sub(ts)
			if diff < 0 {
				diff = -diff
			}
			if diff <= tolerance && (best < 0 || diff < bestDiff) {
				best = cand
				bestDiff = diff
			}
		}

		if best >= 0 {
			col[i] = samples[best].Value
		} else {
			col[i] = math.NaN()
		}
	}
	return col
}

func fillForward(col []float64) {
	last := math.NaN()
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = last
		} else {
			last = v
		}
	}
}

func fillBackward(col []float64) {
	next := math.NaN()
	for i := len(col) - 1; i >= 0; i-- {
		if math.IsNaN(col[i]) {
			col[i] = next
		} else {
			next = col[i]
		}
	}
}

func allGaps(col []float64) bool {
	for _, v := range col {
		if !math.IsNaN(v) {
			return false
		}
	}
	return true
}
