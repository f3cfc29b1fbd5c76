package sunpos

import (
	"math"
	"testing"
	"time"
)

// Reference values from the suncalc test suite for 2013-03-05T00:00:00Z at
// 50.5N 30.5E.
func TestPositionReference(t *testing.T) {
	instant := time.Date(2013, 3, 5, 0, 0, 0, 0, time.UTC)

	azimuth, altitude := Position(instant, 50.5, 30.5)

	const eps = 1e-9
	if math.Abs(azimuth-(-2.5003175907168385)) > eps {
		t.Errorf("azimuth = %.12f, want -2.500317590717", azimuth)
	}
	if math.Abs(altitude-(-0.7000406838781611)) > eps {
		t.Errorf("altitude = %.12f, want -0.700040683878", altitude)
	}
}

func TestPositionDeterministic(t *testing.T) {
	instant := time.Date(2024, 4, 16, 9, 30, 0, 0, time.UTC)

	az1, alt1 := Position(instant, 52.5, 13.493)
	az2, alt2 := Position(instant, 52.5, 13.493)

	if az1 != az2 || alt1 != alt2 {
		t.Errorf("Position not reproducible: (%v, %v) vs (%v, %v)", az1, alt1, az2, alt2)
	}
}

func TestAltitudeBounds(t *testing.T) {
	// Sweep a full day; altitude must stay within [-pi/2, pi/2] and the sun
	// must be above the horizon at midday in Berlin in April.
	base := time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24; h++ {
		_, alt := Position(base.Add(time.Duration(h)*time.Hour), 52.5, 13.493)
		if alt < -math.Pi/2 || alt > math.Pi/2 {
			t.Fatalf("hour %d: altitude %v out of range", h, alt)
		}
	}

	_, noon := Position(base.Add(12*time.Hour), 52.5, 13.493)
	if noon <= 0 {
		t.Errorf("midday altitude = %v, want > 0", noon)
	}
	_, midnight := Position(base, 52.5, 13.493)
	if midnight >= 0 {
		t.Errorf("midnight altitude = %v, want < 0", midnight)
	}
}
