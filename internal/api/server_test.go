package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/powerlog/internal/models"
	"github.com/lox/powerlog/internal/store"
)

func setupTestServer(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := store.New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s, NewServer(s, "0").Handler()
}

func ptr(v float64) *float64 { return &v }

// insertSamples appends n samples starting at the current instant, spaced one
// second apart. Timestamps never precede now, so every row lands in today's
// window regardless of when the test runs.
func insertSamples(t *testing.T, s *store.Store, n int) {
	t.Helper()
	start := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < n; i++ {
		sample := models.Sample{
			Time:           start.Add(time.Duration(i) * time.Second),
			PowerCh1:       100 + float64(i),
			PowerCh2:       90 + float64(i),
			EnergyTodayCh1: float64(i),
			EnergyTodayCh2: float64(i),
			EnergyTotalCh1: 1000 + float64(i),
			EnergyTotalCh2: 900 + float64(i),
			MaxPower:       600,
			CloudCover:     ptr(0.42),
			SunAzimuth:     0.4,
			SunAltitude:    0.6,
		}
		if _, err := s.InsertSample(sample); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEndpointsEmptyTable(t *testing.T) {
	_, handler := setupTestServer(t)

	for _, path := range []string{"/powerToday", "/generatedByHour", "/generatedByDay"} {
		rec := get(t, handler, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
		if got := rec.Body.String(); got != "[]" {
			t.Errorf("%s: body = %q, want []", path, got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: content type = %q", path, ct)
		}
	}
}

func TestPowerToday(t *testing.T) {
	s, handler := setupTestServer(t)
	insertSamples(t, s, 3)

	rec := get(t, handler, "/powerToday")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var samples []models.Sample
	if err := json.Unmarshal(rec.Body.Bytes(), &samples); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	if samples[0].PowerCh1 != 100 || samples[2].PowerCh1 != 102 {
		t.Errorf("unexpected power values: %v, %v", samples[0].PowerCh1, samples[2].PowerCh1)
	}
	if samples[0].CloudCover == nil || *samples[0].CloudCover != 0.42 {
		t.Errorf("cloud cover = %v, want 0.42", samples[0].CloudCover)
	}
}

// The streamed body must decode to exactly what an eager collection of the
// same query returns.
func TestStreamMatchesCollect(t *testing.T) {
	s, handler := setupTestServer(t)
	insertSamples(t, s, 50)

	rec := get(t, handler, "/generatedByDay")
	var streamed []models.DailyDelta
	if err := json.Unmarshal(rec.Body.Bytes(), &streamed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	stream, err := s.SelectGeneratedByDay()
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	collected, err := stream.Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}

	if len(streamed) != len(collected) {
		t.Fatalf("streamed %d rows, collected %d", len(streamed), len(collected))
	}
	for i := range collected {
		if streamed[i].Date != collected[i].Date {
			t.Errorf("row %d date = %q, want %q", i, streamed[i].Date, collected[i].Date)
		}
	}
}

// Result sets larger than the flush batch must arrive complete and as one
// valid JSON array across multiple flushed writes.
func TestPowerTodayLargeResult(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large result test in short mode")
	}

	s, handler := setupTestServer(t)
	n := 2*flushBatchSize + 500
	insertSamples(t, s, n)

	rec := get(t, handler, "/powerToday")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var samples []models.Sample
	if err := json.Unmarshal(rec.Body.Bytes(), &samples); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(samples) != n {
		t.Errorf("got %d samples, want %d", len(samples), n)
	}
}

func TestHealth(t *testing.T) {
	s, handler := setupTestServer(t)

	rec := get(t, handler, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var empty healthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &empty); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if empty.Status != "degraded" || !empty.Stale {
		t.Errorf("empty table health = %+v, want degraded/stale", empty)
	}

	insertSamples(t, s, 1)

	rec = get(t, handler, "/health")
	var healthy healthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &healthy); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if healthy.Status != "ok" || healthy.Stale {
		t.Errorf("health = %+v, want ok", healthy)
	}
	if healthy.Samples != 1 {
		t.Errorf("samples = %d, want 1", healthy.Samples)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, handler := setupTestServer(t)

	rec := get(t, handler, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("metrics body is empty")
	}
}
