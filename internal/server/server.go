package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LuizZaim/SolarView-Demo/internal/analysis"
	"github.com/LuizZaim/SolarView-Demo/internal/devices"
	"github.com/LuizZaim/SolarView-Demo/internal/kpi"
	"github.com/LuizZaim/SolarView-Demo/internal/metrics"
	"github.com/LuizZaim/SolarView-Demo/internal/models"
	"github.com/LuizZaim/SolarView-Demo/internal/pipeline"
	"github.com/LuizZaim/SolarView-Demo/internal/series"
)

const sessionCookie = "session_id"

// DataProvider is the day pipeline as the server sees it.
type DataProvider interface {
	DayData(ctx context.Context, date string) (*models.DayData, error)
	Timeline(ctx context.Context, date string) (series.Timeline, error)
}

// Credentials are the dashboard login pair.
type Credentials struct {
	Username string
	Password string
}

// session holds one user's preferences and KPI history.
type session struct {
	Settings models.Settings
	Ledger   *kpi.Ledger
}

// Server represents the HTTP server
type Server struct {
	provider    DataProvider
	engine      *analysis.Engine
	pump        *devices.Pump
	devices     *devices.Registry
	credentials Credentials
	mux         *http.ServeMux

	mu       sync.Mutex
	sessions map[string]*session
}

// NewServer creates a new HTTP server
func NewServer(provider DataProvider, engine *analysis.Engine, pump *devices.Pump, registry *devices.Registry, creds Credentials) *Server {
	s := &Server{
		provider:    provider,
		engine:      engine,
		pump:        pump,
		devices:     registry,
		credentials: creds,
		mux:         http.NewServeMux(),
		sessions:    make(map[string]*session),
	}

	// Register routes
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/login", s.handleLogin)
	s.mux.HandleFunc("/api/logout", s.handleLogout)
	s.mux.HandleFunc("/api/data", s.handleData)
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/get_settings", s.handleGetSettings)
	s.mux.HandleFunc("/api/save_settings", s.handleSaveSettings)
	s.mux.HandleFunc("/api/pump", s.handlePump)
	s.mux.HandleFunc("/api/devices", s.handleDevices)
	s.mux.HandleFunc("/api/devices/toggle", s.handleDeviceToggle)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.credentials.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.credentials.Password)) == 1
	if !userOK || !passOK {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{
		Settings: models.DefaultSettings(),
		Ledger:   kpi.NewLedger(),
	}
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "login successful"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
}

// currentSession resolves the request's session, or nil when unauthenticated.
func (s *Server) currentSession(r *http.Request) *session {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[cookie.Value]
}

// handleData serves KPIs and chart series for one day and records the KPIs
// into the session's history ledger.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	data, err := s.provider.DayData(r.Context(), date)
	if err != nil {
		s.writeDataError(w, date, err)
		return
	}

	sess.Ledger.Record(date, data.Kpis)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

type analyzeRequest struct {
	Date string              `json:"date"`
	Kpis *models.KpiSnapshot `json:"kpis"`
}

// handleAnalyze runs the rule engine for one day in the session's language.
// The client may override the KPIs (the dashboard posts back the ones it
// displays); the timeline always comes from the pipeline.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	data, err := s.provider.DayData(r.Context(), req.Date)
	if err != nil {
		s.writeDataError(w, req.Date, err)
		return
	}
	timeline, err := s.provider.Timeline(r.Context(), req.Date)
	if err != nil {
		s.writeDataError(w, req.Date, err)
		return
	}

	kpis := data.Kpis
	if req.Kpis != nil {
		kpis = *req.Kpis
	}

	result := s.engine.Analyze(analysis.Input{
		Kpis:     kpis,
		Timeline: timeline,
		Ledger:   sess.Ledger,
		Date:     req.Date,
		Language: sess.Settings.Language,
	})
	metrics.RecordAnalysis(sess.Settings.Language)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess.Settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if settings.Theme == "" {
		settings.Theme = "system"
	}
	if settings.Language == "" {
		settings.Language = "pt"
	}
	sess.Settings = settings

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "settings saved"})
}

type pumpRequest struct {
	Mode devices.PumpMode `json:"mode"`
}

func (s *Server) handlePump(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var req pumpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.pump.SetMode(req.Mode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.pump.State())
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"devices": s.devices.States()})
}

type toggleRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleDeviceToggle(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	on, err := s.devices.Toggle(req.Name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"name": req.Name, "on": on})
}

// writeDataError maps pipeline failures onto HTTP statuses: bad input is the
// caller's fault, an empty day is 404, anything else is internal.
func (s *Server) writeDataError(w http.ResponseWriter, date string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidDate), errors.Is(err, pipeline.ErrFutureDate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pipeline.ErrNoData):
		http.Error(w, fmt.Sprintf("no data found for date %s", date), http.StatusNotFound)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
