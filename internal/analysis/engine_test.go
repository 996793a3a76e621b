package analysis

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/LuizZaim/SolarView-Demo/internal/kpi"
	"github.com/LuizZaim/SolarView-Demo/internal/models"
	"github.com/LuizZaim/SolarView-Demo/internal/series"
)

type stubWeather struct {
	forecast  models.Forecast
	askedDate string
}

func (s *stubWeather) Forecast(date string) models.Forecast {
	s.askedDate = date
	return s.forecast
}

func intPtr(v int) *int { return &v }

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 8, 1, hour, 30, 0, 0, time.UTC)
	}
}

// timelineAt builds a timeline with one sample per given hour.
func timelineAt(hours []int, cols map[string][]float64) series.Timeline {
	tl := series.Timeline{Columns: cols}
	for _, h := range hours {
		tl.Timestamps = append(tl.Timestamps, time.Date(2025, 8, 1, h, 0, 0, 0, time.UTC))
	}
	return tl
}

func newTestEngine(w WeatherProvider) *Engine {
	e := NewEngine(w, 20.0)
	e.now = fixedClock(9)
	return e
}

func TestAnalyze_Narrative(t *testing.T) {
	weather := &stubWeather{forecast: models.Forecast{Condition: models.ConditionClear, TempMax: 28.5}}
	e := newTestEngine(weather)

	in := Input{
		Kpis: models.KpiSnapshot{
			TotalEnergy: 18.0,
			PeakPower:   4200.0,
			SocInitial:  intPtr(40),
			SocFinal:    intPtr(55),
		},
		Timeline: timelineAt([]int{10, 11, 12}, map[string][]float64{
			models.ColumnPower: {500, 4200, 1800},
			models.ColumnGrid:  {0, 0, 0},
		}),
		Ledger:   kpi.NewLedger(),
		Date:     "2025-08-01",
		Language: "pt",
	}

	got := e.Analyze(in)

	wantFragments := []string{
		fmt.Sprintf(tr("pt", "eff_good"), 90.0),
		fmt.Sprintf(tr("pt", "batt_charge"), 40, 55),
		fmt.Sprintf(tr("pt", "peak_medium"), 4200.0),
		tr("pt", "auto_full"),
		fmt.Sprintf(tr("pt", "pred_clear"), 28.5),
		fmt.Sprintf(tr("pt", "close_good"), 18.0),
	}
	for _, frag := range wantFragments {
		if !strings.Contains(got.Narrative, frag) {
			t.Errorf("narrative missing fragment %q\nnarrative: %s", frag, got.Narrative)
		}
	}

	// No history yet, so no trend sentence.
	if strings.Contains(got.Narrative, tr("pt", "trend_aligned")) {
		t.Error("trend fragment must be omitted on the first recorded day")
	}
	if weather.askedDate != "2025-08-02" {
		t.Errorf("forecast queried for %q, want next day 2025-08-02", weather.askedDate)
	}
}

func TestAnalyze_TrendAgainstHistory(t *testing.T) {
	e := newTestEngine(&stubWeather{forecast: models.Forecast{Condition: models.ConditionOther}})

	ledger := kpi.NewLedger()
	ledger.Record("2025-07-30", models.KpiSnapshot{TotalEnergy: 10})
	ledger.Record("2025-07-31", models.KpiSnapshot{TotalEnergy: 10})

	tests := []struct {
		name  string
		total float64
		want  string
	}{
		{name: "above average", total: 15, want: fmt.Sprintf(tr("pt", "trend_above"), 50.0)},
		{name: "below average", total: 5, want: fmt.Sprintf(tr("pt", "trend_below"), 50.0)},
		{name: "within band", total: 10.5, want: tr("pt", "trend_aligned")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Analyze(Input{
				Kpis:     models.KpiSnapshot{TotalEnergy: tt.total},
				Ledger:   ledger,
				Date:     "2025-08-01",
				Language: "pt",
			})
			if !strings.Contains(got.Narrative, tt.want) {
				t.Errorf("narrative missing %q\nnarrative: %s", tt.want, got.Narrative)
			}
		})
	}
}

func TestAnalyze_LanguageFallback(t *testing.T) {
	e := newTestEngine(&stubWeather{forecast: models.Forecast{Condition: models.ConditionOther}})

	got := e.Analyze(Input{
		Kpis:     models.KpiSnapshot{TotalEnergy: 18},
		Language: "fr",
	})

	if !strings.Contains(got.Narrative, fmt.Sprintf(tr("pt", "eff_good"), 90.0)) {
		t.Errorf("unknown language must fall back to pt, got: %s", got.Narrative)
	}
}

func TestGridAutonomyFragment(t *testing.T) {
	e := newTestEngine(&stubWeather{})

	tests := []struct {
		name string
		grid []float64
		gen  []float64
		want string
	}{
		{
			name: "fully autonomous",
			grid: []float64{0, 0},
			gen:  []float64{3000, 3000},
			want: tr("pt", "auto_full"),
		},
		{
			name: "high grid share",
			grid: []float64{3000, 3000},
			gen:  []float64{1000, 1000},
			want: fmt.Sprintf(tr("pt", "auto_low"), 75.0),
		},
		{
			name: "low grid share",
			grid: []float64{100, 100},
			gen:  []float64{3000, 3000},
			want: fmt.Sprintf(tr("pt", "auto_high"), 100.0*200.0/6200.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{Timeline: timelineAt([]int{10, 11}, map[string][]float64{
				models.ColumnGrid:  tt.grid,
				models.ColumnPower: tt.gen,
			})}
			got := e.gridAutonomyFragment(in, "pt")
			if got != tt.want {
				t.Errorf("gridAutonomyFragment() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("missing columns", func(t *testing.T) {
		got := e.gridAutonomyFragment(Input{}, "pt")
		if got != tr("pt", "auto_unknown") {
			t.Errorf("gridAutonomyFragment() = %q, want unknown message", got)
		}
	})
}

func TestRecommendations(t *testing.T) {
	e := newTestEngine(&stubWeather{})

	t.Run("weak day", func(t *testing.T) {
		got := e.recommendations(Input{Kpis: models.KpiSnapshot{}}, "pt")
		if !containsString(got, tr("pt", "rec_cleaning")) {
			t.Error("expected cleaning recommendation for a low-energy day")
		}
		if !containsString(got, tr("pt", "rec_shift")) {
			t.Error("expected load-shift recommendation for a low peak")
		}
		if containsString(got, tr("pt", "rec_battery")) {
			t.Error("battery recommendation must not fire without SOC data")
		}
	})

	t.Run("strong day", func(t *testing.T) {
		got := e.recommendations(Input{Kpis: models.KpiSnapshot{
			TotalEnergy: 35,
			PeakPower:   5000,
			SocFinal:    intPtr(10),
		}}, "pt")
		for _, want := range []string{
			tr("pt", "rec_battery"),
			tr("pt", "rec_consumption"),
			tr("pt", "rec_schedule"),
		} {
			if !containsString(got, want) {
				t.Errorf("missing recommendation %q in %v", want, got)
			}
		}
		if containsString(got, tr("pt", "rec_cleaning")) {
			t.Error("cleaning recommendation must not fire on a strong day")
		}
	})
}

func TestNightVsDayRecommendation(t *testing.T) {
	e := newTestEngine(&stubWeather{})

	// One sample per hour, values in watts. 1 kWh = 60000 watt-minutes, so a
	// single 60000 W sample contributes 1 kWh.
	tests := []struct {
		name  string
		hours []int
		grid  []float64
		gen   []float64
		want  string
	}{
		{
			name:  "heavy night draw",
			hours: []int{22, 23, 12},
			grid:  []float64{90000, 90000, 0},
			gen:   []float64{0, 0, 1000},
			want:  fmt.Sprintf(tr("pt", "rec_night_shift"), 3.0),
		},
		{
			name:  "midday opportunity",
			hours: []int{12, 13},
			grid:  []float64{60000, 30000},
			gen:   []float64{4000, 4000},
			want:  fmt.Sprintf(tr("pt", "rec_night_midday"), 4000.0),
		},
		{
			name:  "mild night draw",
			hours: []int{22, 12},
			grid:  []float64{90000, 0},
			gen:   []float64{0, 1000},
			want:  fmt.Sprintf(tr("pt", "rec_night_warning"), 1.5),
		},
		{
			name:  "nothing to flag",
			hours: []int{12},
			grid:  []float64{0},
			gen:   []float64{1000},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{Timeline: timelineAt(tt.hours, map[string][]float64{
				models.ColumnGrid:  tt.grid,
				models.ColumnPower: tt.gen,
			})}
			got := e.nightVsDayRecommendation(in, "pt")
			if got != tt.want {
				t.Errorf("nightVsDayRecommendation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAutomationSuggestions(t *testing.T) {
	tests := []struct {
		name string
		hour int
		kpis models.KpiSnapshot
		want []string
	}{
		{
			name: "full battery at midday",
			hour: 12,
			kpis: models.KpiSnapshot{SocFinal: intPtr(95), PeakPower: 4500},
			want: []string{tr("pt", "autom_heavy"), tr("pt", "autom_water")},
		},
		{
			name: "full battery outside window",
			hour: 8,
			kpis: models.KpiSnapshot{SocFinal: intPtr(95)},
			want: nil,
		},
		{
			name: "low generation in the evening",
			hour: 19,
			kpis: models.KpiSnapshot{PeakPower: 500},
			want: []string{tr("pt", "autom_shed")},
		},
		{
			name: "window edges are inclusive",
			hour: 16,
			kpis: models.KpiSnapshot{SocFinal: intPtr(95)},
			want: []string{tr("pt", "autom_heavy")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&stubWeather{})
			e.now = fixedClock(tt.hour)
			got := e.automationSuggestions(Input{Kpis: tt.kpis}, "pt")
			if len(got) != len(tt.want) {
				t.Fatalf("got %d suggestions %v, want %d", len(got), got, len(tt.want))
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("suggestion[%d] = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}

func TestPredictiveFragment(t *testing.T) {
	tests := []struct {
		name     string
		forecast models.Forecast
		want     string
	}{
		{
			name:     "rain",
			forecast: models.Forecast{Condition: models.ConditionRain, PrecipitationProbability: 0.8},
			want:     fmt.Sprintf(tr("pt", "pred_rain"), 80.0),
		},
		{
			name:     "drizzle counts as rain",
			forecast: models.Forecast{Condition: models.ConditionDrizzle, PrecipitationProbability: 0.5},
			want:     fmt.Sprintf(tr("pt", "pred_rain"), 50.0),
		},
		{
			name:     "clouds",
			forecast: models.Forecast{Condition: models.ConditionClouds},
			want:     tr("pt", "pred_clouds"),
		},
		{
			name:     "clear",
			forecast: models.Forecast{Condition: models.ConditionClear, TempMax: 31.2},
			want:     fmt.Sprintf(tr("pt", "pred_clear"), 31.2),
		},
		{
			name:     "other",
			forecast: models.Forecast{Condition: models.ConditionOther},
			want:     tr("pt", "pred_other"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&stubWeather{forecast: tt.forecast})
			got := e.predictiveFragment(Input{Date: "2025-08-01"}, "pt")
			if got != tt.want {
				t.Errorf("predictiveFragment() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSimpleSummary(t *testing.T) {
	tests := []struct {
		name string
		kpis models.KpiSnapshot
		lang string
		want string
	}{
		{
			name: "good day with charge in english",
			kpis: models.KpiSnapshot{TotalEnergy: 18, SocInitial: intPtr(40), SocFinal: intPtr(55)},
			lang: "en",
			want: fmt.Sprintf(tr("en", "simple_good"), 18.0) + " " + tr("en", "simple_charge"),
		},
		{
			name: "low day without battery in portuguese",
			kpis: models.KpiSnapshot{TotalEnergy: 2},
			lang: "pt",
			want: fmt.Sprintf(tr("pt", "simple_low"), 2.0),
		},
		{
			name: "exceptional day with discharge",
			kpis: models.KpiSnapshot{TotalEnergy: 35, SocInitial: intPtr(80), SocFinal: intPtr(60)},
			lang: "pt",
			want: fmt.Sprintf(tr("pt", "simple_exc"), 35.0) + " " + tr("pt", "simple_discharge"),
		},
		{
			name: "unknown language falls back",
			kpis: models.KpiSnapshot{TotalEnergy: 2},
			lang: "de",
			want: fmt.Sprintf(tr("pt", "simple_low"), 2.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimpleSummary(tt.kpis, tt.lang)
			if got != tt.want {
				t.Errorf("SimpleSummary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
