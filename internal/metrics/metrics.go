package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal tracks upstream SEMS column fetches
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sems_fetches_total",
			Help: "Total number of SEMS column fetches",
		},
		[]string{"column", "status"},
	)

	// FetchDuration tracks the duration of upstream SEMS fetches
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sems_fetch_duration_seconds",
			Help:    "Duration of SEMS column fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"column"},
	)

	// DayCacheHitsTotal counts day-cache hits
	DayCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "day_cache_hits_total",
			Help: "Total number of day cache hits",
		},
	)

	// DayCacheMissesTotal counts day-cache misses
	DayCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "day_cache_misses_total",
			Help: "Total number of day cache misses",
		},
	)

	// AnalysesTotal counts analysis requests by language
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of analysis reports generated",
		},
		[]string{"language"},
	)

	// AppInfo provides static information about the application
	AppInfo = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "solarview_app_info",
			Help: "Application information (always 1)",
		},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "solarview_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)
)

func init() {
	// Set app info to 1 (always visible)
	AppInfo.Set(1)
	// Record app start time
	AppStartTime.SetToCurrentTime()
}

// RecordFetch records one upstream column fetch
func RecordFetch(column string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FetchesTotal.WithLabelValues(column, status).Inc()
	FetchDuration.WithLabelValues(column).Observe(duration.Seconds())
}

// RecordCacheHit records a day-cache hit
func RecordCacheHit() {
	DayCacheHitsTotal.Inc()
}

// RecordCacheMiss records a day-cache miss
func RecordCacheMiss() {
	DayCacheMissesTotal.Inc()
}

// RecordAnalysis records one generated analysis report
func RecordAnalysis(language string) {
	AnalysesTotal.WithLabelValues(language).Inc()
}
