package series

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sample is a single timestamped reading.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Series is one metric's readings, sorted ascending by timestamp.
type Series struct {
	Metric  string
	Samples []Sample
}

// Empty reports whether the series has no samples.
func (s Series) Empty() bool {
	return len(s.Samples) == 0
}

// Candidate container keys, in priority order. SEMS responses nest the item
// list in different places depending on endpoint version.
var (
	nestedContainerKeys   = []string{"column1", "items", "list", "datas", "result"}
	topLevelContainerKeys = []string{"data", "items", "list", "result", "datas"}
)

// Candidate item field names, in priority order.
var (
	timestampKeys = []string{"time", "date", "collectTime", "cTime", "tm"}
	valueKeys     = []string{"value", "v", "val", "column"}
)

// Normalize converts one raw SEMS payload for one metric into a sorted Series.
// It never fails: unrecognized shapes and unparseable items yield an empty (or
// shorter) series, not an error.
func Normalize(raw map[string]interface{}, metric string) Series {
	out := Series{Metric: metric}
	items := findItems(raw)
	if len(items) == 0 {
		return out
	}

	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		rawTS, ok := firstPresent(m, timestampKeys)
		if !ok {
			continue
		}
		rawVal, ok := firstPresent(m, append([]string{metric}, valueKeys...))
		if !ok {
			continue
		}
		ts, ok := parseTimestamp(rawTS)
		if !ok {
			continue
		}
		v, ok := parseValue(rawVal)
		if !ok {
			continue
		}
		out.Samples = append(out.Samples, Sample{Timestamp: ts, Value: v})
	}

	sort.SliceStable(out.Samples, func(i, j int) bool {
		return out.Samples[i].Timestamp.Before(out.Samples[j].Timestamp)
	})
	return out
}

// findItems scans the candidate container keys, one nesting level under "data"
// first, then at the top level, and returns the first list found.
func findItems(raw map[string]interface{}) []interface{} {
	if data, ok := raw["data"].(map[string]interface{}); ok {
		for _, key := range nestedContainerKeys {
			if items, ok := data[key].([]interface{}); ok {
				return items
			}
		}
	}
	for _, key := range topLevelContainerKeys {
		if items, ok := raw[key].([]interface{}); ok {
			return items
		}
	}
	return nil
}

// firstPresent returns the value of the first key present in the item.
// JSON null counts as absent.
func firstPresent(m map[string]interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Month-first layouts tried first, then day-first on failure, mirroring the
// vendor's inconsistent date formatting across regions.
var (
	monthFirstLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02 15:04",
		"01/02/2006 15:04:05",
		"01/02/2006 15:04",
		"01/02/2006",
	}
	dayFirstLayouts = []string{
		"02/01/2006 15:04:05",
		"02/01/2006 15:04",
		"02/01/2006",
		"02-01-2006 15:04:05",
		"02-01-2006 15:04",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
	}
)

func parseTimestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range monthFirstLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		for _, layout := range dayFirstLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case float64:
		// Unix epoch; collectTime comes back in milliseconds.
		if t >= 1e12 {
			return time.UnixMilli(int64(t)).UTC(), true
		}
		if t > 0 {
			return time.Unix(int64(t), 0).UTC(), true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func parseValue(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case string:
		// Decimal comma appears in EU-region payloads.
		s := strings.ReplaceAll(strings.TrimSpace(val), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
