package weather

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LuizZaim/SolarView-Demo/internal/models"
)

func TestForecast_ParsesDailyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_date") != "2025-08-02" || q.Get("end_date") != "2025-08-02" {
			t.Errorf("unexpected date range: start=%s end=%s", q.Get("start_date"), q.Get("end_date"))
		}
		if q.Get("daily") == "" {
			t.Error("missing daily fields in query")
		}
		w.Write([]byte(`{"daily": {
			"time": ["2025-08-02"],
			"weather_code": [61],
			"temperature_2m_max": [22.5],
			"precipitation_probability_max": [80]
		}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, -23.5505, -46.6333)
	got := c.Forecast("2025-08-02")

	if got.Condition != models.ConditionRain {
		t.Errorf("Condition = %s, want rain", got.Condition)
	}
	if got.TempMax != 22.5 {
		t.Errorf("TempMax = %v, want 22.5", got.TempMax)
	}
	if got.PrecipitationProbability != 0.8 {
		t.Errorf("PrecipitationProbability = %v, want 0.8", got.PrecipitationProbability)
	}
}

func TestForecast_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
		{
			name: "empty daily block",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"daily": {"time": [], "weather_code": []}}`))
			},
		},
	}

	want := defaultForecast()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClientWithBaseURL(srv.URL, 0, 0)
			got := c.Forecast("2025-08-02")
			if got != want {
				t.Errorf("Forecast() = %+v, want default %+v", got, want)
			}
		})
	}
}

func TestForecast_UnreachableServer(t *testing.T) {
	c := NewClientWithBaseURL("http://127.0.0.1:1", 0, 0)
	if got := c.Forecast("2025-08-02"); got != defaultForecast() {
		t.Errorf("Forecast() = %+v, want default on connection failure", got)
	}
}

func TestConditionFromCode(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, models.ConditionClear},
		{1, models.ConditionClouds},
		{3, models.ConditionClouds},
		{45, models.ConditionClouds},
		{48, models.ConditionClouds},
		{51, models.ConditionDrizzle},
		{57, models.ConditionDrizzle},
		{61, models.ConditionRain},
		{67, models.ConditionRain},
		{80, models.ConditionRain},
		{82, models.ConditionRain},
		{95, models.ConditionRain},
		{99, models.ConditionRain},
		{71, models.ConditionOther},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("code %d", tt.code), func(t *testing.T) {
			if got := conditionFromCode(tt.code); got != tt.want {
				t.Errorf("conditionFromCode(%d) = %s, want %s", tt.code, got, tt.want)
			}
		})
	}
}
