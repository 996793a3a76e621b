package models

// Canonical SEMS column names fetched for every day. The order matters: the
// first non-empty series in this order becomes the alignment reference.
const (
	ColumnPower   = "Pac"       // instantaneous AC power, W
	ColumnBattery = "Cbattery1" // battery state of charge, %
	ColumnGrid    = "pgrid"     // grid power, W
	ColumnEnergy  = "Eday"      // cumulative daily energy, kWh
)

// FetchColumns lists every metric column in canonical order.
var FetchColumns = []string{ColumnPower, ColumnBattery, ColumnGrid, ColumnEnergy}

// KpiSnapshot summarizes one day of inverter telemetry.
type KpiSnapshot struct {
	TotalEnergy float64 `json:"total_energy"` // kWh
	PeakPower   float64 `json:"peak_power"`   // W
	SocInitial  *int    `json:"soc_initial"`  // 0-100, nil when no battery data
	SocFinal    *int    `json:"soc_final"`    // 0-100, nil when no battery data
}

// ChartData is the dashboard projection of an aligned timeline.
type ChartData struct {
	Timestamps []string             `json:"timestamps"`
	Series     map[string][]float64 `json:"series"`
}

// DayData is what a single /api/data request returns and what the day cache stores.
type DayData struct {
	Kpis   KpiSnapshot `json:"kpis"`
	Charts ChartData   `json:"charts"`
}

// AnalysisResult is the output of the rule engine.
type AnalysisResult struct {
	Narrative             string   `json:"narrative"`
	Recommendations       []string `json:"recommendations"`
	AutomationSuggestions []string `json:"automation_suggestions"`
}

// Weather condition categories the analysis engine branches on.
const (
	ConditionClear   = "clear"
	ConditionClouds  = "clouds"
	ConditionRain    = "rain"
	ConditionDrizzle = "drizzle"
	ConditionOther   = "other"
)

// Forecast is a one-day weather summary.
type Forecast struct {
	Condition                string  `json:"condition"`
	TempMax                  float64 `json:"temp_max"`
	PrecipitationProbability float64 `json:"precipitation_probability"` // 0-1
	Description              string  `json:"description"`
}

// Settings are the per-session dashboard preferences.
type Settings struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{Theme: "system", Language: "pt"}
}
