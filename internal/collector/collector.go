// Package collector runs acquisition cycles: probe the inverter, fetch its
// readings and the current weather concurrently, and append one sample per
// successful cycle.
package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lox/powerlog/internal/inverter"
	"github.com/lox/powerlog/internal/metrics"
	"github.com/lox/powerlog/internal/models"
	"github.com/lox/powerlog/internal/store"
	"github.com/lox/powerlog/internal/sunpos"
	"github.com/lox/powerlog/internal/upstream"
	"github.com/lox/powerlog/internal/weather"
)

type Collector struct {
	store    *store.Store
	inverter *inverter.Client
	weather  *weather.Client
	lat, lon float64
}

func New(st *store.Store, inv *inverter.Client, wx *weather.Client, lat, lon float64) *Collector {
	return &Collector{
		store:    st,
		inverter: inv,
		weather:  wx,
		lat:      lat,
		lon:      lon,
	}
}

// Run executes one cycle per tick until ctx is cancelled. Cycles are strictly
// serialized: a tick that fires while a cycle is still in flight is handled
// after it finishes, and a failed cycle never stops the loop.
func (c *Collector) Run(ctx context.Context, interval time.Duration) {
	if err := c.RunOnce(ctx); err != nil {
		log.Printf("collector: cycle failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("collector: shutting down")
			return
		case <-ticker.C:
			if err := c.RunOnce(ctx); err != nil {
				log.Printf("collector: cycle failed: %v", err)
			}
		}
	}
}

// RunOnce performs a single acquisition cycle. An unreachable inverter is an
// expected nightly condition and returns nil without appending a row; any
// other failure aborts the cycle with an error and nothing is persisted.
func (c *Collector) RunOnce(ctx context.Context) error {
	metrics.CyclesTotal.Inc()

	// Every field of the sample derives from this one instant, so readings
	// and sun position stay temporally consistent.
	now := time.Now().UTC().Truncate(time.Second)

	// Fail-fast gate: the on/off endpoint doubles as the reachability probe.
	status, err := c.inverter.FetchOnOff(ctx)
	if err != nil {
		if upstream.Unreachable(err) {
			metrics.CyclesSkippedOffline.Inc()
			log.Printf("collector: inverter is offline: %v", err)
			return nil
		}
		metrics.UpstreamErrors.WithLabelValues("inverter").Inc()
		return fmt.Errorf("inverter probe: %w", err)
	}

	type inverterResult struct {
		output   *inverter.OutputData
		maxPower float64
		err      error
	}
	type weatherResult struct {
		conditions *weather.CurrentConditions
		err        error
	}

	invCh := make(chan inverterResult, 1)
	wxCh := make(chan weatherResult, 1)

	go func() {
		output, err := c.inverter.FetchOutputData(ctx)
		if err != nil {
			invCh <- inverterResult{err: err}
			return
		}
		maxPower, err := c.inverter.FetchMaxPower(ctx)
		invCh <- inverterResult{output: output, maxPower: maxPower, err: err}
	}()

	go func() {
		conditions, err := c.weather.FetchCurrent(ctx)
		wxCh <- weatherResult{conditions: conditions, err: err}
	}()

	// Await both branches even when one fails, so no fetch is left running
	// in the background.
	inv := <-invCh
	wx := <-wxCh

	if wx.err != nil {
		// Non-fatal: the sample is still useful without weather fields.
		metrics.UpstreamErrors.WithLabelValues("weather").Inc()
		log.Printf("collector: weather fetch failed: %v", wx.err)
		wx.conditions = nil
	}
	if inv.err != nil {
		// Fatal: a sample without the primary channel readings is useless.
		metrics.UpstreamErrors.WithLabelValues("inverter").Inc()
		return fmt.Errorf("inverter fetch: %w", inv.err)
	}

	azimuth, altitude := sunpos.Position(now, c.lat, c.lon)
	sample := assembleSample(now, inv.output, inv.maxPower, wx.conditions, azimuth, altitude)

	id, err := c.store.InsertSample(sample)
	if err != nil {
		return fmt.Errorf("append sample: %w", err)
	}
	metrics.SamplesAppended.Inc()

	log.Printf("collector: sample %d: status=%s power=%.1fW/%.1fW sun_alt=%.2f weather=%t",
		id, status, sample.PowerCh1, sample.PowerCh2, altitude, wx.conditions != nil)
	return nil
}

func assembleSample(now time.Time, output *inverter.OutputData, maxPower float64, conditions *weather.CurrentConditions, azimuth, altitude float64) models.Sample {
	sample := models.Sample{
		Time:           now,
		PowerCh1:       output.Channel1.Power,
		PowerCh2:       output.Channel2.Power,
		EnergyTodayCh1: output.Channel1.EnergyGenerationStartup,
		EnergyTodayCh2: output.Channel2.EnergyGenerationStartup,
		EnergyTotalCh1: output.Channel1.EnergyGenerationLifetime,
		EnergyTotalCh2: output.Channel2.EnergyGenerationLifetime,
		MaxPower:       maxPower,
		SunAzimuth:     azimuth,
		SunAltitude:    altitude,
	}

	if conditions != nil {
		// Cloud cover arrives as a percentage; stored as a 0..1 fraction.
		cloudCover := conditions.CloudCover / 100.0
		sample.CloudCover = &cloudCover
		sample.TerrestrialRadiation = &conditions.TerrestrialRadiation
		sample.DirectRadiation = &conditions.DirectRadiation
		sample.DiffuseRadiation = &conditions.DiffuseRadiation
		sample.ShortwaveRadiation = &conditions.ShortwaveRadiation
		sample.DirectNormalIrradiance = &conditions.DirectNormalIrradiance
		sample.GlobalTiltedIrradiance = &conditions.GlobalTiltedIrradiance
	}

	return sample
}
