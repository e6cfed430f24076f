package insolation

import (
	"reflect"
	"testing"
	"time"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/geo"
	"github.com/insolight/insolight/pkg/shadow"
)

var moscow = building.Location{
	Latitude:  55.7558,
	Longitude: 37.6173,
	Timezone:  "Europe/Moscow",
}

func southWindow() building.Window {
	return building.Window{
		ID:            "w-south",
		Center:        geo.V3(0, 0, 5),
		Normal:        geo.V3(0, -1, 0),
		Width:         1.5,
		Height:        1.4,
		Transmittance: 0.75,
		FrameFactor:   0.7,
	}
}

func moscowEngine(t *testing.T, required time.Duration, tester *shadow.Tester) (*Engine, time.Time) {
	t.Helper()
	tz, err := moscow.TZ()
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	date := time.Date(2024, 4, 22, 0, 0, 0, 0, tz)
	return NewEngine(moscow, tz, time.Minute, required, tester), date
}

// Northern-zone period start, single south-facing window, no
// obstructions: one continuous period while the sun is up and in front
// of the window, comfortably over the 01:30:00 threshold.
func TestSouthWindowMoscowScenario(t *testing.T) {
	e, date := moscowEngine(t, 90*time.Minute, nil)
	res := e.ComputeWindow(southWindow(), date)

	if res.Status != StatusOK {
		t.Fatalf("expected ok result, got %s (%s)", res.Status, res.Reason)
	}
	if len(res.Periods) != 1 {
		t.Fatalf("expected one continuous period, got %d", len(res.Periods))
	}
	if !res.MeetsRequirement {
		t.Errorf("expected 01:30:00 requirement met, total was %s", res.Formatted)
	}
	// Far more than 90 minutes, far less than the full ~14.5h day.
	if res.TotalSeconds < 5*3600 || res.TotalSeconds > 14*3600 {
		t.Errorf("implausible total duration %d seconds", res.TotalSeconds)
	}
	if res.Sunrise == nil || res.Sunset == nil {
		t.Fatal("expected sunrise/sunset details")
	}
	p := res.Periods[0]
	if p.Start.Before(*res.Sunrise) {
		t.Error("period must not start before sunrise")
	}
}

func TestTotalEqualsSumOfPeriods(t *testing.T) {
	e, date := moscowEngine(t, 90*time.Minute, nil)
	res := e.ComputeWindow(southWindow(), date)

	var sum int64
	for _, p := range res.Periods {
		sum += p.Seconds
		if got := int64(p.End.Sub(p.Start) / time.Second); got != p.Seconds {
			t.Errorf("period seconds %d does not match end-start %d", p.Seconds, got)
		}
	}
	if sum != res.TotalSeconds {
		t.Errorf("total %d != sum of periods %d", res.TotalSeconds, sum)
	}
}

func TestPeriodsOrderedNonOverlapping(t *testing.T) {
	e, date := moscowEngine(t, time.Hour, nil)
	res := e.ComputeWindow(southWindow(), date)
	for i := 1; i < len(res.Periods); i++ {
		if !res.Periods[i-1].End.Before(res.Periods[i].Start) {
			t.Errorf("periods %d and %d overlap or are unordered", i-1, i)
		}
	}
}

// Exact boundary: a requirement equal to the computed total must pass.
func TestBoundaryExactness(t *testing.T) {
	e, date := moscowEngine(t, time.Minute, nil)
	first := e.ComputeWindow(southWindow(), date)

	exact := NewEngine(moscow, e.TZ, time.Minute, time.Duration(first.TotalSeconds)*time.Second, nil)
	res := exact.ComputeWindow(southWindow(), date)
	if res.TotalSeconds != first.TotalSeconds {
		t.Fatalf("expected identical totals, got %d vs %d", res.TotalSeconds, first.TotalSeconds)
	}
	if !res.MeetsRequirement {
		t.Error("total exactly equal to the requirement must meet it (non-strict comparison)")
	}

	over := NewEngine(moscow, e.TZ, time.Minute, time.Duration(first.TotalSeconds+1)*time.Second, nil)
	if over.ComputeWindow(southWindow(), date).MeetsRequirement {
		t.Error("one second over the total must fail")
	}
}

func TestComplianceMonotonic(t *testing.T) {
	durations := []time.Duration{time.Minute, time.Hour, 5 * time.Hour, 10 * time.Hour, 20 * time.Hour}
	prev := true
	for _, req := range durations {
		e, date := moscowEngine(t, req, nil)
		meets := e.ComputeWindow(southWindow(), date).MeetsRequirement
		if meets && !prev {
			t.Fatalf("compliance is not monotonic: requirement %v passed after a shorter one failed", req)
		}
		prev = meets
	}
}

func TestIdempotence(t *testing.T) {
	e, date := moscowEngine(t, 90*time.Minute, nil)
	a := e.ComputeWindow(southWindow(), date)
	b := e.ComputeWindow(southWindow(), date)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs must yield bit-identical results")
	}
}

func TestNorthWindowGetsNoSun(t *testing.T) {
	e, date := moscowEngine(t, 90*time.Minute, nil)
	w := southWindow()
	w.ID = "w-north"
	w.Normal = geo.V3(0, 1, 0)
	res := e.ComputeWindow(w, date)

	// At 55.7N in late April the sun rises north of east and sets north
	// of west, so a north window may catch low morning/evening sun, but
	// never enough for the midday requirement a south window gets.
	south := e.ComputeWindow(southWindow(), date)
	if res.TotalSeconds >= south.TotalSeconds {
		t.Errorf("north window (%d s) should see less sun than south window (%d s)",
			res.TotalSeconds, south.TotalSeconds)
	}
}

func TestFullyShadowedWindow(t *testing.T) {
	// A huge facade directly south of the window blocks every ray.
	wall := building.Obstruction{
		ID:     "tower",
		Origin: geo.V3(-1000, -10, 0),
		Edge1:  geo.V3(2000, 0, 0),
		Edge2:  geo.V3(0, 0, 1000),
	}
	tester := shadow.NewTester([]building.Obstruction{wall}, 5000)
	e, date := moscowEngine(t, 90*time.Minute, tester)
	res := e.ComputeWindow(southWindow(), date)

	if res.Status != StatusOK {
		t.Fatalf("shadowed window is still a valid result, got %s", res.Status)
	}
	if res.TotalSeconds != 0 {
		t.Errorf("expected zero insolation behind the tower, got %d s", res.TotalSeconds)
	}
	if res.MeetsRequirement {
		t.Error("zero insolation cannot meet a positive requirement")
	}
	if len(res.Periods) != 0 {
		t.Errorf("expected no periods, got %d", len(res.Periods))
	}
}

func TestDegenerateWindowErrorState(t *testing.T) {
	e, date := moscowEngine(t, 90*time.Minute, nil)

	zeroArea := southWindow()
	zeroArea.Width = 0
	res := e.ComputeWindow(zeroArea, date)
	if res.Status != StatusError || res.Reason == "" {
		t.Errorf("zero-area window should be an error-state result, got %+v", res)
	}

	zeroNormal := southWindow()
	zeroNormal.Normal = geo.V3(0, 0, 0)
	res = e.ComputeWindow(zeroNormal, date)
	if res.Status != StatusError {
		t.Error("non-normalizable normal should be an error-state result")
	}
}

func TestPolarNightZeroResult(t *testing.T) {
	svalbard := building.Location{Latitude: 78.0, Longitude: 15.6, Timezone: "UTC"}
	e := NewEngine(svalbard, time.UTC, time.Minute, 90*time.Minute, nil)
	res := e.ComputeWindow(southWindow(), time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC))

	if res.Status != StatusOK {
		t.Fatalf("polar night is a valid zero result, got %s", res.Status)
	}
	if res.TotalSeconds != 0 || res.MeetsRequirement {
		t.Errorf("expected zero non-compliant result, got %+v", res)
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(5400); got != "01:30:00" {
		t.Errorf("expected 01:30:00, got %s", got)
	}
	if got := formatSeconds(0); got != "00:00:00" {
		t.Errorf("expected 00:00:00, got %s", got)
	}
	if got := formatSeconds(3661); got != "01:01:01" {
		t.Errorf("expected 01:01:01, got %s", got)
	}
}
