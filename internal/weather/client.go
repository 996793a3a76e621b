package weather

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/LuizZaim/SolarView-Demo/internal/models"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Client fetches one-day forecasts from the Open-Meteo API. It never returns
// an error: on any failure it falls back to a fixed safe default, because the
// analysis engine has no error path for missing weather.
type Client struct {
	httpClient *http.Client
	baseURL    string
	latitude   float64
	longitude  float64
	timezone   string
}

// NewClient creates a forecast client for a fixed location.
func NewClient(latitude, longitude float64, timezone string) *Client {
	if timezone == "" {
		timezone = "auto"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		latitude:   latitude,
		longitude:  longitude,
		timezone:   timezone,
	}
}

// NewClientWithBaseURL points the client at a test server.
func NewClientWithBaseURL(baseURL string, latitude, longitude float64) *Client {
	c := NewClient(latitude, longitude, "auto")
	c.baseURL = baseURL
	return c
}

// defaultForecast is returned whenever the upstream call fails.
func defaultForecast() models.Forecast {
	return models.Forecast{
		Condition:                models.ConditionClouds,
		TempMax:                  25.0,
		PrecipitationProbability: 0.3,
		Description:              "nublado",
	}
}

type dailyResponse struct {
	Daily struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weather_code"`
		Temperature2mMax            []float64 `json:"temperature_2m_max"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Forecast returns the daily forecast for the given ISO date.
func (c *Client) Forecast(date string) models.Forecast {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&timezone=%s&daily=weather_code,temperature_2m_max,precipitation_probability_max&start_date=%s&end_date=%s",
		c.baseURL, c.latitude, c.longitude, c.timezone, date, date)

	resp, err := c.httpClient.Get(url)
	if err != nil {
		log.Printf("weather fetch for %s failed, using default forecast: %v", date, err)
		return defaultForecast()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("weather fetch for %s returned status %d, using default forecast", date, resp.StatusCode)
		return defaultForecast()
	}

	var body dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("failed to decode weather response for %s, using default forecast: %v", date, err)
		return defaultForecast()
	}
	if len(body.Daily.WeatherCode) == 0 {
		log.Printf("weather response for %s carried no daily data, using default forecast", date)
		return defaultForecast()
	}

	code := body.Daily.WeatherCode[0]
	forecast := models.Forecast{
		Condition:   conditionFromCode(code),
		Description: describeCode(code),
	}
	if len(body.Daily.Temperature2mMax) > 0 {
		forecast.TempMax = body.Daily.Temperature2mMax[0]
	}
	if len(body.Daily.PrecipitationProbabilityMax) > 0 {
		forecast.PrecipitationProbability = body.Daily.PrecipitationProbabilityMax[0] / 100
	}
	return forecast
}

// conditionFromCode maps WMO weather codes onto the engine's categories.
func conditionFromCode(code int) string {
	switch {
	case code == 0:
		return models.ConditionClear
	case code >= 1 && code <= 3, code == 45, code == 48:
		return models.ConditionClouds
	case code >= 51 && code <= 57:
		return models.ConditionDrizzle
	case code >= 61 && code <= 67, code >= 80 && code <= 82, code >= 95:
		return models.ConditionRain
	default:
		return models.ConditionOther
	}
}

func describeCode(code int) string {
	switch conditionFromCode(code) {
	case models.ConditionClear:
		return "céu limpo"
	case models.ConditionClouds:
		return "nublado"
	case models.ConditionDrizzle:
		return "chuvisco"
	case models.ConditionRain:
		return "chuva"
	default:
		return "condições variáveis"
	}
}
