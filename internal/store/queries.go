package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lox/powerlog/internal/models"
)

// SelectPowerToday streams every sample recorded today (UTC), in insertion
// order.
func (s *Store) SelectPowerToday() (*RowStream[models.Sample], error) {
	stream, err := queryStream(s.db, `
		SELECT time,
		       power_ch1, power_ch2,
		       energy_today_ch1, energy_today_ch2,
		       energy_total_ch1, energy_total_ch2,
		       max_power,
		       cloud_cover,
		       terrestrial_radiation, direct_radiation, diffuse_radiation,
		       shortwave_radiation, direct_normal_irradiance, global_tilted_irradiance,
		       sun_azimuth, sun_altitude
		FROM powerlog
		WHERE time > date('now')
	`, scanSample)
	if err != nil {
		return nil, fmt.Errorf("select power today: %w", err)
	}
	return stream, nil
}

// SelectGeneratedByHour streams today's per-hour generated energy. Each hour
// bucket's value is the difference between its max lifetime counter and the
// previous bucket's; the first bucket of the day has no predecessor and
// yields null.
func (s *Store) SelectGeneratedByHour() (*RowStream[models.HourlyDelta], error) {
	stream, err := queryStream(s.db, `
		SELECT strftime('%H', time) AS hour,
		       (MAX(energy_total_ch1) - (lag(MAX(energy_total_ch1)) OVER win)) AS ch1,
		       (MAX(energy_total_ch2) - (lag(MAX(energy_total_ch2)) OVER win)) AS ch2
		FROM powerlog
		WHERE time > date('now')
		GROUP BY hour
		WINDOW win AS (ROWS 1 PRECEDING)
	`, scanHourlyDelta)
	if err != nil {
		return nil, fmt.Errorf("select generated by hour: %w", err)
	}
	return stream, nil
}

// SelectGeneratedByDay streams per-day generated energy over the whole table,
// ascending by date. A day with no predecessor baselines against zero, not
// null; this deliberately differs from the hourly query.
func (s *Store) SelectGeneratedByDay() (*RowStream[models.DailyDelta], error) {
	stream, err := queryStream(s.db, `
		SELECT date(time) AS date,
		       (MAX(energy_total_ch1) - (lag(MAX(energy_total_ch1), 1, 0) OVER win)) AS ch1,
		       (MAX(energy_total_ch2) - (lag(MAX(energy_total_ch2), 1, 0) OVER win)) AS ch2
		FROM powerlog
		GROUP BY date
		WINDOW win AS (ROWS 1 PRECEDING)
		ORDER BY date ASC
	`, scanDailyDelta)
	if err != nil {
		return nil, fmt.Errorf("select generated by day: %w", err)
	}
	return stream, nil
}

func scanSample(rows *sql.Rows) (models.Sample, error) {
	var (
		sample models.Sample
		raw    string
	)
	err := rows.Scan(
		&raw,
		&sample.PowerCh1, &sample.PowerCh2,
		&sample.EnergyTodayCh1, &sample.EnergyTodayCh2,
		&sample.EnergyTotalCh1, &sample.EnergyTotalCh2,
		&sample.MaxPower,
		&sample.CloudCover,
		&sample.TerrestrialRadiation, &sample.DirectRadiation, &sample.DiffuseRadiation,
		&sample.ShortwaveRadiation, &sample.DirectNormalIrradiance, &sample.GlobalTiltedIrradiance,
		&sample.SunAzimuth, &sample.SunAltitude,
	)
	if err != nil {
		return sample, err
	}
	sample.Time, err = time.ParseInLocation(timeLayout, raw, time.UTC)
	if err != nil {
		return sample, fmt.Errorf("parse sample time %q: %w", raw, err)
	}
	return sample, nil
}

func scanHourlyDelta(rows *sql.Rows) (models.HourlyDelta, error) {
	var d models.HourlyDelta
	err := rows.Scan(&d.Hour, &d.Ch1, &d.Ch2)
	return d, err
}

func scanDailyDelta(rows *sql.Rows) (models.DailyDelta, error) {
	var d models.DailyDelta
	err := rows.Scan(&d.Date, &d.Ch1, &d.Ch2)
	return d, err
}
