package pipeline

import (
	"context"
	"errors"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/LuizZaim/SolarView-Demo/internal/kpi"
	"github.com/LuizZaim/SolarView-Demo/internal/metrics"
	"github.com/LuizZaim/SolarView-Demo/internal/models"
	"github.com/LuizZaim/SolarView-Demo/internal/series"
)

// Caller-visible failure classes. Everything else degrades to empty data.
var (
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrFutureDate  = errors.New("cannot request data for a future date")
	ErrNoData      = errors.New("no data for the requested date")
)

const (
	dateLayout = "2006-01-02"
	// Nearest-match window for reconciling independently-sampled columns.
	alignTolerance = 5 * time.Minute
	// Upstream fetches for one day run on at most this many goroutines.
	fetchWorkers = 4
)

// Fetcher retrieves one raw metric payload from the vendor API.
type Fetcher interface {
	InverterDataByColumn(inverterID, column, date string) (map[string]interface{}, error)
}

// dayEntry is one cached day: the dashboard projection plus the full aligned
// timeline the analysis engine works on.
type dayEntry struct {
	data     *models.DayData
	timeline series.Timeline
}

// Service runs the per-day ingestion pipeline: validate, fetch, normalize,
// align, compute, cache.
type Service struct {
	fetcher    Fetcher
	inverterID string
	cache      *gocache.Cache
	todayTTL   time.Duration
	now        func() time.Time
}

// NewService creates a pipeline around the given fetcher. Completed days are
// cached for the process lifetime; the current day only for todayTTL, since
// its data keeps changing.
func NewService(fetcher Fetcher, inverterID string, todayTTL time.Duration) *Service {
	return &Service{
		fetcher:    fetcher,
		inverterID: inverterID,
		cache:      gocache.New(gocache.NoExpiration, 10*time.Minute),
		todayTTL:   todayTTL,
		now:        time.Now,
	}
}

// DayData returns KPIs and chart series for one calendar day, fetching and
// reconciling upstream telemetry on a cache miss.
func (s *Service) DayData(ctx context.Context, date string) (*models.DayData, error) {
	entry, err := s.load(ctx, date)
	if err != nil {
		return nil, err
	}
	return entry.data, nil
}

// Timeline returns the full aligned timeline for one day, for the analysis
// engine. Served from the same cache as DayData.
func (s *Service) Timeline(ctx context.Context, date string) (series.Timeline, error) {
	entry, err := s.load(ctx, date)
	if err != nil {
		return series.Timeline{}, err
	}
	return entry.timeline, nil
}

func (s *Service) load(ctx context.Context, date string) (*dayEntry, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	today := s.now().Format(dateLayout)
	if date > today {
		return nil, ErrFutureDate
	}

	if cached, found := s.cache.Get(date); found {
		metrics.RecordCacheHit()
		return cached.(*dayEntry), nil
	}
	metrics.RecordCacheMiss()

	timeline := s.fetchAndAlign(ctx, date)
	if timeline.Empty() {
		// Deliberately not cached: a later request may find data.
		return nil, ErrNoData
	}

	entry := &dayEntry{
		data: &models.DayData{
			Kpis:   kpi.Compute(timeline),
			Charts: chartProjection(timeline),
		},
		timeline: timeline,
	}

	if date == today {
		s.cache.Set(date, entry, s.todayTTL)
	} else {
		s.cache.Set(date, entry, gocache.NoExpiration)
	}
	return entry, nil
}

// fetchAndAlign pulls all metric columns in parallel and merges them. A failed
// column fetch degrades to an empty series rather than aborting the day.
func (s *Service) fetchAndAlign(ctx context.Context, date string) series.Timeline {
	queryDatetime := date + " 00:00:00"
	payloads := make([]map[string]interface{}, len(models.FetchColumns))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)
	for i, column := range models.FetchColumns {
		i, column := i, column
		g.Go(func() error {
			start := time.Now()
			payload, err := s.fetcher.InverterDataByColumn(s.inverterID, column, queryDatetime)
			metrics.RecordFetch(column, time.Since(start), err)
			if err != nil {
				log.Printf("fetch of column %q for %s failed, continuing with empty series: %v", column, date, err)
				return nil
			}
			payloads[i] = payload
			return nil
		})
	}
	g.Wait()

	// Normalize and align in canonical column order so the reference series
	// never depends on fetch completion order.
	list := make([]series.Series, len(models.FetchColumns))
	for i, column := range models.FetchColumns {
		if payloads[i] == nil {
			list[i] = series.Series{Metric: column}
			continue
		}
		list[i] = series.Normalize(payloads[i], column)
	}
	return series.Align(list, alignTolerance)
}

// chartProjection extracts the dashboard series from the aligned timeline.
// Eday is a KPI input only and stays out of the charts.
func chartProjection(tl series.Timeline) models.ChartData {
	chart := models.ChartData{
		Timestamps: make([]string, len(tl.Timestamps)),
		Series:     make(map[string][]float64),
	}
	for i, ts := range tl.Timestamps {
		chart.Timestamps[i] = ts.Format("2006-01-02 15:04:05")
	}
	for _, column := range []string{models.ColumnPower, models.ColumnBattery, models.ColumnGrid} {
		if col, ok := tl.Columns[column]; ok {
			chart.Series[column] = col
		}
	}
	return chart
}
