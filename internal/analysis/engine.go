package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LuizZaim/SolarView-Demo/internal/kpi"
	"github.com/LuizZaim/SolarView-Demo/internal/models"
	"github.com/LuizZaim/SolarView-Demo/internal/series"
)

// Hand-tuned thresholds carried over from the original dashboard. Kept as
// named constants; do not re-derive.
const (
	trendAlignedBandKwh = 1.0

	effExcellentPct = 120.0
	effGoodPct      = 80.0
	effModeratePct  = 50.0

	socStableBand = 5

	peakHighW   = 5000.0
	peakMediumW = 3000.0

	gridLowAutonomyPct = 20.0

	nightShiftKwh      = 2.0
	nightWarningKwh    = 1.0
	middayOpportunityW = 3000.0
	middayGridDrawKwh  = 1.0
	wattMinutesPerKwh  = 60.0 * 1000.0

	closeExceptionalKwh = 25.0
	closeGoodKwh        = 15.0
	closeModerateKwh    = 8.0

	recCleaningBelowKwh    = 10.0
	recBatteryBelowSoc     = 20
	recConsumptionAboveKwh = 30.0
	recShiftBelowPeakW     = 2000.0
	recScheduleAboveKwh    = 15.0

	automHeavySoc   = 90
	automWaterPeakW = 4000.0
	automShedPeakW  = 1000.0
)

// WeatherProvider supplies a one-day forecast. Implementations never fail;
// they return a safe default instead (the engine has no error path).
type WeatherProvider interface {
	Forecast(date string) models.Forecast
}

// Input bundles everything one analysis run depends on.
type Input struct {
	Kpis     models.KpiSnapshot
	Timeline series.Timeline
	Ledger   *kpi.Ledger
	Date     string // ISO day being analyzed
	Language string
}

// Engine turns KPIs, the aligned timeline and history into narrative text,
// recommendations and automation suggestions. Stateless apart from the
// weather call; each heuristic is an independent function composed in a
// fixed order.
type Engine struct {
	weather             WeatherProvider
	expectedDailyEnergy float64          // kWh baseline for the efficiency tiers
	now                 func() time.Time // injectable for the time-of-day rules
}

// NewEngine creates an analysis engine with the given expected daily energy
// baseline (kWh).
func NewEngine(weather WeatherProvider, expectedDailyEnergyKwh float64) *Engine {
	return &Engine{
		weather:             weather,
		expectedDailyEnergy: expectedDailyEnergyKwh,
		now:                 time.Now,
	}
}

// Analyze produces the full report for one day.
func (e *Engine) Analyze(in Input) models.AnalysisResult {
	lang := in.Language
	if _, ok := translations[lang]; !ok {
		lang = DefaultLanguage
	}

	fragments := []string{
		e.trendFragment(in, lang),
		e.efficiencyFragment(in, lang),
		e.batteryFragment(in, lang),
		e.peakFragment(in, lang),
		e.gridAutonomyFragment(in, lang),
		e.predictiveFragment(in, lang),
		e.closingFragment(in, lang),
	}

	nonEmpty := fragments[:0]
	for _, f := range fragments {
		if f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}

	return models.AnalysisResult{
		Narrative:             strings.Join(nonEmpty, " "),
		Recommendations:       e.recommendations(in, lang),
		AutomationSuggestions: e.automationSuggestions(in, lang),
	}
}

// trendFragment compares the day against the historical average. Omitted on
// the first recorded day: a percentage delta against an empty history is
// undefined.
func (e *Engine) trendFragment(in Input, lang string) string {
	if in.Ledger == nil {
		return ""
	}
	avg := in.Ledger.AverageExcluding(in.Date)
	if avg == 0 {
		return ""
	}
	delta := in.Kpis.TotalEnergy - avg
	if math.Abs(delta) <= trendAlignedBandKwh {
		return tr(lang, "trend_aligned")
	}
	pct := math.Abs(delta) / avg * 100
	if delta > 0 {
		return fmt.Sprintf(tr(lang, "trend_above"), pct)
	}
	return fmt.Sprintf(tr(lang, "trend_below"), pct)
}

func (e *Engine) efficiencyFragment(in Input, lang string) string {
	eff := in.Kpis.TotalEnergy / e.expectedDailyEnergy * 100
	switch {
	case eff > effExcellentPct:
		return fmt.Sprintf(tr(lang, "eff_excellent"), eff)
	case eff > effGoodPct:
		return fmt.Sprintf(tr(lang, "eff_good"), eff)
	case eff > effModeratePct:
		return fmt.Sprintf(tr(lang, "eff_moderate"), eff)
	default:
		return fmt.Sprintf(tr(lang, "eff_low"), eff)
	}
}

func (e *Engine) batteryFragment(in Input, lang string) string {
	if in.Kpis.SocInitial == nil || in.Kpis.SocFinal == nil {
		return tr(lang, "batt_none")
	}
	initial, final := *in.Kpis.SocInitial, *in.Kpis.SocFinal
	delta := final - initial
	switch {
	case delta > socStableBand:
		return fmt.Sprintf(tr(lang, "batt_charge"), initial, final)
	case delta < -socStableBand:
		return fmt.Sprintf(tr(lang, "batt_discharge"), initial, final)
	default:
		return fmt.Sprintf(tr(lang, "batt_stable"), initial, final)
	}
}

func (e *Engine) peakFragment(in Input, lang string) string {
	peak := in.Kpis.PeakPower
	switch {
	case peak > peakHighW:
		return fmt.Sprintf(tr(lang, "peak_high"), peak)
	case peak > peakMediumW:
		return fmt.Sprintf(tr(lang, "peak_medium"), peak)
	default:
		return fmt.Sprintf(tr(lang, "peak_low"), peak)
	}
}

// gridAutonomyFragment approximates daily energies by summing per-minute watt
// samples and dividing by 60*1000.
func (e *Engine) gridAutonomyFragment(in Input, lang string) string {
	grid, okGrid := in.Timeline.Columns[models.ColumnGrid]
	gen, okGen := in.Timeline.Columns[models.ColumnPower]
	if !okGrid || !okGen {
		return tr(lang, "auto_unknown")
	}

	gridEnergy := sumValid(grid) / wattMinutesPerKwh
	genEnergy := sumValid(gen) / wattMinutesPerKwh

	if gridEnergy <= 0 {
		return tr(lang, "auto_full")
	}
	gridPct := gridEnergy / (gridEnergy + genEnergy) * 100
	if gridPct > gridLowAutonomyPct {
		return fmt.Sprintf(tr(lang, "auto_low"), gridPct)
	}
	return fmt.Sprintf(tr(lang, "auto_high"), gridPct)
}

func (e *Engine) predictiveFragment(in Input, lang string) string {
	forecast := e.weather.Forecast(nextDay(in.Date))
	switch forecast.Condition {
	case models.ConditionRain, models.ConditionDrizzle:
		return fmt.Sprintf(tr(lang, "pred_rain"), forecast.PrecipitationProbability*100)
	case models.ConditionClouds:
		return tr(lang, "pred_clouds")
	case models.ConditionClear:
		return fmt.Sprintf(tr(lang, "pred_clear"), forecast.TempMax)
	default:
		return tr(lang, "pred_other")
	}
}

func (e *Engine) closingFragment(in Input, lang string) string {
	total := in.Kpis.TotalEnergy
	switch {
	case total > closeExceptionalKwh:
		return fmt.Sprintf(tr(lang, "close_exceptional"), total)
	case total > closeGoodKwh:
		return fmt.Sprintf(tr(lang, "close_good"), total)
	case total > closeModerateKwh:
		return fmt.Sprintf(tr(lang, "close_moderate"), total)
	default:
		return fmt.Sprintf(tr(lang, "close_low"), total)
	}
}

// recommendations builds the standalone list: the night-vs-day rule first,
// then the independent threshold rules. Rules can co-occur.
func (e *Engine) recommendations(in Input, lang string) []string {
	var recs []string

	if nightRec := e.nightVsDayRecommendation(in, lang); nightRec != "" {
		recs = append(recs, nightRec)
	}
	if in.Kpis.TotalEnergy < recCleaningBelowKwh {
		recs = append(recs, tr(lang, "rec_cleaning"))
	}
	if in.Kpis.SocFinal != nil && *in.Kpis.SocFinal < recBatteryBelowSoc {
		recs = append(recs, tr(lang, "rec_battery"))
	}
	if in.Kpis.TotalEnergy > recConsumptionAboveKwh {
		recs = append(recs, tr(lang, "rec_consumption"))
	}
	if in.Kpis.PeakPower < recShiftBelowPeakW {
		recs = append(recs, tr(lang, "rec_shift"))
	}
	if in.Kpis.TotalEnergy > recScheduleAboveKwh {
		recs = append(recs, tr(lang, "rec_schedule"))
	}

	return recs
}

// nightVsDayRecommendation weighs nighttime grid draw (20:00-06:00) against
// midday conditions (10:00-15:00).
func (e *Engine) nightVsDayRecommendation(in Input, lang string) string {
	grid, okGrid := in.Timeline.Columns[models.ColumnGrid]
	gen, okGen := in.Timeline.Columns[models.ColumnPower]
	if !okGrid || !okGen {
		return ""
	}

	nightGridKwh := windowSum(in.Timeline.Timestamps, grid, isNightHour) / wattMinutesPerKwh
	middayGridKwh := windowSum(in.Timeline.Timestamps, grid, isMiddayHour) / wattMinutesPerKwh
	middayAvgGenW := windowMean(in.Timeline.Timestamps, gen, isMiddayHour)

	switch {
	case nightGridKwh > nightShiftKwh:
		return fmt.Sprintf(tr(lang, "rec_night_shift"), nightGridKwh)
	case middayAvgGenW > middayOpportunityW && middayGridKwh > middayGridDrawKwh:
		return fmt.Sprintf(tr(lang, "rec_night_midday"), middayAvgGenW)
	case nightGridKwh > nightWarningKwh:
		return fmt.Sprintf(tr(lang, "rec_night_warning"), nightGridKwh)
	default:
		return ""
	}
}

// automationSuggestions are evaluated against wall-clock "now", not the
// queried day: they tell the user what to do right now.
func (e *Engine) automationSuggestions(in Input, lang string) []string {
	var out []string
	hour := e.now().Hour()

	if in.Kpis.SocFinal != nil && *in.Kpis.SocFinal > automHeavySoc && hour >= 10 && hour <= 16 {
		out = append(out, tr(lang, "autom_heavy"))
	}
	if in.Kpis.PeakPower > automWaterPeakW && hour >= 11 && hour <= 15 {
		out = append(out, tr(lang, "autom_water"))
	}
	if in.Kpis.PeakPower < automShedPeakW && hour >= 18 && hour <= 21 {
		out = append(out, tr(lang, "autom_shed"))
	}

	return out
}

// SimpleSummary is the original short report: energy tier plus battery
// movement, in the requested language ("pt" and "en" both fully supported).
func SimpleSummary(kpis models.KpiSnapshot, lang string) string {
	if _, ok := translations[lang]; !ok {
		lang = DefaultLanguage
	}

	var energy string
	switch {
	case kpis.TotalEnergy > 30:
		energy = fmt.Sprintf(tr(lang, "simple_exc"), kpis.TotalEnergy)
	case kpis.TotalEnergy > 15:
		energy = fmt.Sprintf(tr(lang, "simple_good"), kpis.TotalEnergy)
	case kpis.TotalEnergy > 5:
		energy = fmt.Sprintf(tr(lang, "simple_modest"), kpis.TotalEnergy)
	default:
		energy = fmt.Sprintf(tr(lang, "simple_low"), kpis.TotalEnergy)
	}

	battery := ""
	if kpis.SocInitial != nil && kpis.SocFinal != nil {
		switch {
		case *kpis.SocFinal > *kpis.SocInitial:
			battery = tr(lang, "simple_charge")
		case *kpis.SocFinal < *kpis.SocInitial:
			battery = tr(lang, "simple_discharge")
		default:
			battery = tr(lang, "simple_stable")
		}
	}

	return strings.TrimSpace(energy + " " + battery)
}

func isNightHour(h int) bool {
	return h >= 20 || h < 6
}

func isMiddayHour(h int) bool {
	return h >= 10 && h < 15
}

func sumValid(col []float64) float64 {
	sum := 0.0
	for _, v := range col {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

func windowSum(timestamps []time.Time, col []float64, inWindow func(int) bool) float64 {
	sum := 0.0
	for i, ts := range timestamps {
		if i >= len(col) || math.IsNaN(col[i]) {
			continue
		}
		if inWindow(ts.Hour()) {
			sum += col[i]
		}
	}
	return sum
}

func windowMean(timestamps []time.Time, col []float64, inWindow func(int) bool) float64 {
	sum := 0.0
	n := 0
	for i, ts := range timestamps {
		if i >= len(col) || math.IsNaN(col[i]) {
			continue
		}
		if inWindow(ts.Hour()) {
			sum += col[i]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func nextDay(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, 1).Format("2006-01-02")
}
