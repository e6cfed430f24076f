// Package insolation computes direct-sunlight exposure durations for
// windows over a calendar day and checks them against a regulatory
// minimum.
//
// The day is sampled at a fixed time step between sunrise and sunset.
// Uniform discretization of a continuous boundary means each period
// boundary carries a systematic uncertainty of ±step/2; this sampling
// granularity, not the ephemeris, is the dominant contributor to the
// ±10-minute regulatory tolerance.
package insolation

import (
	"fmt"
	"time"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/shadow"
	"github.com/insolight/insolight/pkg/sun"
)

// DefaultStep is the sampling time step when the caller supplies none.
const DefaultStep = time.Minute

// Status marks whether a window's result is usable.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Period is one maximal run of continuous insolation in local civil time.
type Period struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Seconds int64     `json:"seconds"`
}

// Result is the per-window insolation outcome for one date. A plain
// serializable value: re-running a calculation produces a fresh,
// independent result.
type Result struct {
	WindowID         string   `json:"window_id"`
	Date             string   `json:"date"` // YYYY-MM-DD
	Status           Status   `json:"status"`
	Reason           string   `json:"reason,omitempty"`
	Periods          []Period `json:"periods"`
	TotalSeconds     int64    `json:"total_seconds"`
	RequiredSeconds  int64    `json:"required_seconds"`
	MeetsRequirement bool     `json:"meets_requirement"`
	Formatted        string   `json:"duration_formatted"`

	Sunrise       *time.Time `json:"sunrise,omitempty"`
	Sunset        *time.Time `json:"sunset,omitempty"`
	DaylightHours float64    `json:"daylight_hours"`
}

// Engine computes insolation for windows of one building location.
type Engine struct {
	Location building.Location
	TZ       *time.Location
	Step     time.Duration
	Required time.Duration
	Tester   *shadow.Tester
}

// NewEngine builds an engine; a nil tester means no shadowing.
func NewEngine(loc building.Location, tz *time.Location, step, required time.Duration, tester *shadow.Tester) *Engine {
	if step <= 0 {
		step = DefaultStep
	}
	if tester == nil {
		tester = shadow.NewTester(nil, 0)
	}
	return &Engine{Location: loc, TZ: tz, Step: step, Required: required, Tester: tester}
}

// ComputeWindow runs the sampling state machine for one window on one
// date. Degenerate window geometry yields an error-state result rather
// than failing the batch.
func (e *Engine) ComputeWindow(w building.Window, date time.Time) Result {
	res := Result{
		WindowID:        w.ID,
		Date:            date.Format("2006-01-02"),
		Status:          StatusOK,
		Periods:         []Period{},
		RequiredSeconds: int64(e.Required / time.Second),
	}

	if w.Area() <= 0 {
		res.Status = StatusError
		res.Reason = "window has zero area"
		res.Formatted = formatSeconds(0)
		return res
	}
	normal := w.Normal.Normalize()
	if normal.Length() < 1e-9 {
		res.Status = StatusError
		res.Reason = "window normal is not normalizable"
		res.Formatted = formatSeconds(0)
		return res
	}

	daylight := sun.DaylightBounds(e.Location, date, e.TZ)
	res.DaylightHours = daylight.Hours()
	if daylight.Polar == sun.PolarNight {
		// No daylight at all: a valid zero-length result.
		res.MeetsRequirement = res.RequiredSeconds <= 0
		res.Formatted = formatSeconds(0)
		return res
	}
	sr, ss := daylight.Sunrise, daylight.Sunset
	res.Sunrise, res.Sunset = &sr, &ss

	// Two-state machine over [sunrise, sunset]. A sample is "inside"
	// when the sun is up, the window faces the sun, and no obstruction
	// blocks the ray. Each maximal inside run closes at the boundary
	// (last inside sample + step) so durations are not systematically
	// understated.
	var (
		runStart   time.Time
		lastInside time.Time
		inside     bool
	)
	closeRun := func() {
		end := lastInside.Add(e.Step)
		res.Periods = append(res.Periods, Period{
			Start:   runStart,
			End:     end,
			Seconds: int64(end.Sub(runStart) / time.Second),
		})
		inside = false
	}

	for t := daylight.Sunrise; t.Before(daylight.Sunset); t = t.Add(e.Step) {
		az, el := sun.Position(e.Location, t)
		lit := false
		if sun.Above(el) {
			dir := sun.Direction(az, el)
			if normal.Dot(dir) > 0 && !e.Tester.Blocked(w.Center, dir) {
				lit = true
			}
		}

		switch {
		case lit && !inside:
			runStart = t
			lastInside = t
			inside = true
		case lit && inside:
			lastInside = t
		case !lit && inside:
			closeRun()
		}
	}
	if inside {
		closeRun()
	}

	// Exact integer seconds from instant arithmetic; no float summation.
	for _, p := range res.Periods {
		res.TotalSeconds += p.Seconds
	}
	// Non-strict comparison: a total exactly equal to the requirement
	// passes. A strict or rounded comparison here is a known source of
	// false negatives at boundary values such as 01:30:00.
	res.MeetsRequirement = res.TotalSeconds >= res.RequiredSeconds
	res.Formatted = formatSeconds(res.TotalSeconds)
	return res
}

func formatSeconds(s int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
