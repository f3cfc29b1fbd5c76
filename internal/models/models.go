package models

import "time"

// Sample is one row of the powerlog table: a single acquisition cycle's
// inverter readings, sun position, and (when the weather fetch succeeded)
// cloud cover and irradiance. Immutable once appended.
type Sample struct {
	Time time.Time `json:"time"`

	PowerCh1 float64 `json:"power_ch1"`
	PowerCh2 float64 `json:"power_ch2"`

	// Energy generated since the device last powered up. Resets to zero
	// when the inverter restarts.
	EnergyTodayCh1 float64 `json:"energy_today_ch1"`
	EnergyTodayCh2 float64 `json:"energy_today_ch2"`

	// Lifetime energy counters, never reset.
	EnergyTotalCh1 float64 `json:"energy_total_ch1"`
	EnergyTotalCh2 float64 `json:"energy_total_ch2"`

	MaxPower float64 `json:"max_power"`

	// Weather fields are all present or all absent: the weather source is
	// fetched as one atomic response per cycle.
	CloudCover             *float64 `json:"cloud_cover"`
	TerrestrialRadiation   *float64 `json:"terrestrial_radiation"`
	DirectRadiation        *float64 `json:"direct_radiation"`
	DiffuseRadiation       *float64 `json:"diffuse_radiation"`
	ShortwaveRadiation     *float64 `json:"shortwave_radiation"`
	DirectNormalIrradiance *float64 `json:"direct_normal_irradiance"`
	GlobalTiltedIrradiance *float64 `json:"global_tilted_irradiance"`

	SunAzimuth  float64 `json:"sun_azimuth"`
	SunAltitude float64 `json:"sun_altitude"`
}

// HourlyDelta is the per-channel energy generated during one hour bucket of
// the current day. Ch1/Ch2 are nil for the first bucket of the day, which has
// no predecessor to diff against.
type HourlyDelta struct {
	Hour string   `json:"hour"`
	Ch1  *float64 `json:"ch1"`
	Ch2  *float64 `json:"ch2"`
}

// DailyDelta is the per-channel energy generated on one calendar date. Unlike
// the hourly case, the first date baselines against zero rather than null.
type DailyDelta struct {
	Date string   `json:"date"`
	Ch1  *float64 `json:"ch1"`
	Ch2  *float64 `json:"ch2"`
}
