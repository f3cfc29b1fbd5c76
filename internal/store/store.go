// Package store owns the powerlog SQLite table: the append-only write path
// and the streaming query layer on top of it.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lox/powerlog/internal/models"
)

// timeLayout is how sample timestamps are stored. SQLite's date functions
// parse this directly, and lexical ordering matches chronological ordering.
const timeLayout = "2006-01-02 15:04:05"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) the database at path and applies migrations. The
// collector and the API server share one file; a concurrent opener can hold
// the schema lock briefly, so setup retries on busy errors.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	s := New(db)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(s.Migrate, bo); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSample appends one sample and returns its row id. There is no update
// or delete path.
func (s *Store) InsertSample(sample models.Sample) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO powerlog (
			time,
			power_ch1, power_ch2,
			energy_today_ch1, energy_today_ch2,
			energy_total_ch1, energy_total_ch2,
			max_power,
			cloud_cover,
			terrestrial_radiation, direct_radiation, diffuse_radiation,
			shortwave_radiation, direct_normal_irradiance, global_tilted_irradiance,
			sun_azimuth, sun_altitude
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sample.Time.UTC().Format(timeLayout),
		sample.PowerCh1, sample.PowerCh2,
		sample.EnergyTodayCh1, sample.EnergyTodayCh2,
		sample.EnergyTotalCh1, sample.EnergyTotalCh2,
		sample.MaxPower,
		sample.CloudCover,
		sample.TerrestrialRadiation, sample.DirectRadiation, sample.DiffuseRadiation,
		sample.ShortwaveRadiation, sample.DirectNormalIrradiance, sample.GlobalTiltedIrradiance,
		sample.SunAzimuth, sample.SunAltitude,
	)
	if err != nil {
		return 0, fmt.Errorf("insert sample: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert sample id: %w", err)
	}
	return id, nil
}

// LatestSampleTime returns the timestamp of the most recent sample, or a zero
// time when the table is empty.
func (s *Store) LatestSampleTime() (time.Time, error) {
	var raw sql.NullString
	err := s.db.QueryRow("SELECT MAX(time) FROM powerlog").Scan(&raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("latest sample time: %w", err)
	}
	if !raw.Valid {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(timeLayout, raw.String, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse sample time %q: %w", raw.String, err)
	}
	return t, nil
}

// SampleCount returns the number of stored samples.
func (s *Store) SampleCount() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM powerlog").Scan(&n); err != nil {
		return 0, fmt.Errorf("sample count: %w", err)
	}
	return n, nil
}
