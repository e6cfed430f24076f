// Package calc orchestrates building-level daylight compliance runs.
// It normalizes loggia rooms, fans the insolation and KEO engines over
// every window, recovers entity-scoped failures into per-window result
// states, and aggregates compliance summaries. All inputs are read-only
// snapshots for the duration of a run; the calculation itself is
// synchronous and re-entrant, so a caller may move it onto a background
// worker and fan windows out in parallel without coordination here.
package calc

import (
	"context"
	"fmt"
	"time"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/insolation"
	"github.com/insolight/insolight/pkg/keo"
	"github.com/insolight/insolight/pkg/loggia"
	"github.com/insolight/insolight/pkg/shadow"
	"github.com/insolight/insolight/pkg/validation"
)

// ComputeInsolation evaluates direct-sunlight exposure for every window
// of the building on one date. Configuration errors and an invalid
// location reject the invocation before any work; entity-scoped
// problems surface as error-state entries. On cancellation the completed entries are
// returned along with ctx's error.
func ComputeInsolation(ctx context.Context, b building.Building, date time.Time, cfg Config) (*BuildingInsolationResult, error) {
	if report := cfg.Validate(); !report.Valid {
		return nil, fmt.Errorf("invalid configuration: %s", report.Summary)
	}
	if report := validation.ValidateLocation(b.Location); !report.Valid {
		return nil, fmt.Errorf("invalid location: %s", report.Summary)
	}
	tz, err := b.Location.TZ()
	if err != nil {
		return nil, fmt.Errorf("resolving timezone: %w", err)
	}

	normalized := loggia.NormalizeAll(b, cfg.LoggiaTransmission)
	tester := shadow.NewTester(normalized.Obstructions, cfg.ShadowSearchRadius)
	engine := insolation.NewEngine(normalized.Location, tz, cfg.TimeStep, cfg.RequiredDuration, tester)

	res := &BuildingInsolationResult{
		BuildingID: b.ID,
		Date:       date.In(tz).Format("2006-01-02"),
		Windows:    map[string]insolation.Result{},
		Rooms:      map[string]RoomInsolation{},
		Report:     validation.NewReport(),
	}
	res.Report.Merge(tester.Report())

	total := normalized.WindowCount()
	done := 0
	for _, room := range normalized.Rooms {
		best := RoomInsolation{RoomID: room.ID}
		for _, w := range room.Windows {
			if err := ctx.Err(); err != nil {
				res.finishInsolation()
				return res, err
			}
			wr := engine.ComputeWindow(w, date)
			res.Windows[w.ID] = wr
			done++
			cfg.progress("insolation", done, total)

			// Room insolation follows the best-exposed window.
			if wr.Status == insolation.StatusOK && (best.BestWindowID == "" || wr.TotalSeconds > best.TotalSeconds) {
				best.BestWindowID = w.ID
				best.TotalSeconds = wr.TotalSeconds
				best.MeetsRequirement = wr.MeetsRequirement
			}
		}
		res.Rooms[room.ID] = best
	}

	res.finishInsolation()
	return res, nil
}

// ComputeKEO evaluates natural illumination for every window of the
// building over each room's sample grid. Rooms without windows yield
// empty result sets, a valid non-compliant outcome rather than an
// error.
func ComputeKEO(ctx context.Context, b building.Building, cfg Config) (*BuildingKEOResult, error) {
	if report := cfg.Validate(); !report.Valid {
		return nil, fmt.Errorf("invalid configuration: %s", report.Summary)
	}
	if report := validation.ValidateLocation(b.Location); !report.Valid {
		return nil, fmt.Errorf("invalid location: %s", report.Summary)
	}

	normalized := loggia.NormalizeAll(b, cfg.LoggiaTransmission)
	engine := keo.NewEngine(cfg.GridDensity, cfg.MinKEO)
	if cfg.WorkingPlaneHeight > 0 {
		engine.WorkingPlane = cfg.WorkingPlaneHeight
	}

	res := &BuildingKEOResult{
		BuildingID: b.ID,
		Windows:    map[string][]keo.Result{},
		Rooms:      map[string][]RoomKEOPoint{},
		Report:     validation.NewReport(),
	}

	total := len(normalized.Rooms)
	for ri, room := range normalized.Rooms {
		if err := ctx.Err(); err != nil {
			res.finishKEO()
			return res, err
		}
		if room.PlanPolygon().IsEmpty() || room.FloorArea() <= 0 {
			res.Report.AddWarning(validation.Result{
				Level:      validation.LevelGeometry,
				Message:    fmt.Sprintf("room %s has no samplable area; skipped", room.ID),
				EntityPath: fmt.Sprintf("rooms[%s]", room.ID),
			})
			continue
		}

		// Same deterministic grid for every window of the room, so
		// room-level values are exact per-point sums.
		var roomPoints []RoomKEOPoint
		for _, w := range room.Windows {
			results, err := engine.ComputeForWindow(ctx, room, w)
			res.Windows[w.ID] = results
			if err != nil {
				res.finishKEO()
				return res, err
			}
			if roomPoints == nil {
				roomPoints = make([]RoomKEOPoint, len(results))
				for i, r := range results {
					roomPoints[i].Point = r.Point
				}
			}
			for i, r := range results {
				roomPoints[i].Total += r.Total
			}
		}
		for i := range roomPoints {
			roomPoints[i].MeetsRequirement = roomPoints[i].Total >= cfg.MinKEO
		}
		res.Rooms[room.ID] = roomPoints
		cfg.progress("keo", ri+1, total)
	}

	res.finishKEO()
	return res, nil
}
