package validation

import (
	"testing"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/geo"
)

func validBuilding() *building.Building {
	return &building.Building{
		ID: "b1",
		Location: building.Location{
			Latitude:  55.7558,
			Longitude: 37.6173,
			Timezone:  "Europe/Moscow",
		},
		Rooms: []building.Room{
			{
				ID:     "r1",
				Height: 2.7,
				Plan:   []geo.Point2D{geo.Pt(0, 0), geo.Pt(5, 0), geo.Pt(5, 4), geo.Pt(0, 4)},
				Windows: []building.Window{
					{
						ID:            "w1",
						Center:        geo.V3(2.5, 0, 1.5),
						Normal:        geo.V3(0, -1, 0),
						Width:         1.5,
						Height:        1.4,
						Transmittance: 0.75,
						FrameFactor:   0.7,
					},
				},
			},
		},
	}
}

func TestValidateBuildingOK(t *testing.T) {
	r := ValidateBuilding(validBuilding())
	if !r.Valid {
		t.Fatalf("expected valid report, got %s", r.Summary)
	}
}

func TestValidateLatitudeRange(t *testing.T) {
	b := validBuilding()
	b.Location.Latitude = 95
	r := ValidateBuilding(b)
	if r.Valid {
		t.Error("expected invalid report for latitude 95")
	}
}

func TestValidateBadTimezone(t *testing.T) {
	b := validBuilding()
	b.Location.Timezone = "Mars/Olympus"
	r := ValidateBuilding(b)
	if r.Valid {
		t.Error("expected invalid report for unresolvable timezone")
	}
}

func TestValidateZeroAreaWindow(t *testing.T) {
	b := validBuilding()
	b.Rooms[0].Windows[0].Width = 0
	r := ValidateBuilding(b)
	if r.Valid {
		t.Error("expected invalid report for zero-area window")
	}
}

func TestValidateZeroNormal(t *testing.T) {
	b := validBuilding()
	b.Rooms[0].Windows[0].Normal = geo.V3(0, 0, 0)
	r := ValidateBuilding(b)
	if r.Valid {
		t.Error("expected invalid report for zero normal")
	}
}

func TestValidateDegenerateObstructionIsWarning(t *testing.T) {
	b := validBuilding()
	b.Obstructions = []building.Obstruction{
		{ID: "o1", Edge1: geo.V3(1, 0, 0), Edge2: geo.V3(2, 0, 0)},
	}
	r := ValidateBuilding(b)
	if !r.Valid {
		t.Error("degenerate obstruction must be non-fatal")
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a warning for degenerate obstruction")
	}
}

func TestValidateRoomWithoutPlan(t *testing.T) {
	b := validBuilding()
	b.Rooms[0].Plan = nil
	r := ValidateBuilding(b)
	// No samplable area is a warning, not an error.
	if !r.Valid {
		t.Error("missing plan should not invalidate the model")
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a warning for missing plan")
	}
}

func TestReportMerge(t *testing.T) {
	a := NewReport()
	b := NewReport()
	b.AddError(Result{Level: LevelSchema, Message: "boom"})
	a.Merge(b)
	if a.Valid {
		t.Error("merged report should be invalid")
	}
	if len(a.Errors) != 1 {
		t.Errorf("expected 1 error after merge, got %d", len(a.Errors))
	}
}
