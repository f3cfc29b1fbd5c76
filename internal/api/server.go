// Package api serves the streaming query endpoints over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/powerlog/internal/store"
)

type Server struct {
	store *store.Store
	port  string
}

func NewServer(st *store.Store, port string) *Server {
	return &Server{store: st, port: port}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/powerToday", s.handlePowerToday)
	mux.HandleFunc("/generatedByHour", s.handleGeneratedByHour)
	mux.HandleFunc("/generatedByDay", s.handleGeneratedByDay)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return corsMiddleware(gzipMiddleware(mux))
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handlePowerToday(w http.ResponseWriter, r *http.Request) {
	stream, err := s.store.SelectPowerToday()
	if err != nil {
		http.Error(w, "Something went wrong: "+err.Error(), http.StatusInternalServerError)
		return
	}
	streamJSONArray(w, stream, "powerToday")
}

func (s *Server) handleGeneratedByHour(w http.ResponseWriter, r *http.Request) {
	stream, err := s.store.SelectGeneratedByHour()
	if err != nil {
		http.Error(w, "Something went wrong: "+err.Error(), http.StatusInternalServerError)
		return
	}
	streamJSONArray(w, stream, "generatedByHour")
}

func (s *Server) handleGeneratedByDay(w http.ResponseWriter, r *http.Request) {
	stream, err := s.store.SelectGeneratedByDay()
	if err != nil {
		http.Error(w, "Something went wrong: "+err.Error(), http.StatusInternalServerError)
		return
	}
	streamJSONArray(w, stream, "generatedByDay")
}

type healthStatus struct {
	Status     string     `json:"status"`
	Samples    int64      `json:"samples"`
	LastSample *time.Time `json:"last_sample,omitempty"`
	AgeMinutes int        `json:"age_minutes,omitempty"`
	Stale      bool       `json:"stale"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.SampleCount()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := healthStatus{Status: "ok", Samples: count}

	last, err := s.store.LatestSampleTime()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}

	// The inverter is off overnight, so staleness only means something on a
	// generous threshold.
	staleThreshold := 24 * time.Hour
	if !last.IsZero() {
		health.LastSample = &last
		health.AgeMinutes = int(time.Since(last).Minutes())
		health.Stale = time.Since(last) > staleThreshold
	} else {
		health.Stale = true
	}
	if health.Stale {
		health.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("health: write response: %v", err)
	}
}
