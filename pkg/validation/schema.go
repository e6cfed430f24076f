package validation

import (
	"fmt"

	"github.com/insolight/insolight/pkg/building"
)

// ValidateBuilding performs schema validation on an imported building
// model. It checks structural correctness before any calculation; the
// findings here are entity-scoped and do not abort a run by themselves
// (the engines mark the offending entity's result instead).
func ValidateBuilding(b *building.Building) *Report {
	r := NewReport()

	r.Merge(ValidateLocation(b.Location))
	for i := range b.Rooms {
		validateRoom(&b.Rooms[i], r)
	}
	for i := range b.Obstructions {
		validateObstruction(&b.Obstructions[i], r)
	}

	return r
}

// ValidateLocation checks the geographic position on its own. The
// calculation entry points run it too: unlike entity-scoped findings,
// an invalid location invalidates the whole run.
func ValidateLocation(loc building.Location) *Report {
	r := NewReport()
	if loc.Latitude < -90 || loc.Latitude > 90 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("latitude %.4f is outside valid range", loc.Latitude),
			EntityPath:  "building.location.latitude",
			ActualValue: loc.Latitude,
			Expected:    "-90 to 90",
		})
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("longitude %.4f is outside valid range", loc.Longitude),
			EntityPath:  "building.location.longitude",
			ActualValue: loc.Longitude,
			Expected:    "-180 to 180",
		})
	}
	if _, err := loc.TZ(); err != nil {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("timezone %q does not resolve", loc.Timezone),
			EntityPath:  "building.location.timezone",
			ActualValue: loc.Timezone,
			Expected:    "IANA timezone identifier",
			Suggestions: []string{"use an identifier such as Europe/Moscow"},
		})
	}
	return r
}

func validateRoom(room *building.Room, r *Report) {
	path := fmt.Sprintf("rooms[%s]", room.ID)

	if room.PlanPolygon().IsEmpty() || room.FloorArea() <= 0 {
		r.AddWarning(Result{
			Level:      LevelSchema,
			Message:    fmt.Sprintf("room %s has no samplable floor area", room.ID),
			EntityPath: path + ".plan",
			Expected:   "polygon with at least 3 vertices and positive area",
		})
	}
	if room.Height <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("room %s height must be > 0", room.ID),
			EntityPath:  path + ".height",
			ActualValue: room.Height,
			Expected:    "> 0",
		})
	}
	if len(room.Windows) == 0 && room.Loggia == nil {
		r.AddInfo(Result{
			Level:      LevelSchema,
			Message:    fmt.Sprintf("room %s has no windows and no loggia; daylight results will be empty", room.ID),
			EntityPath: path,
		})
	}

	for i := range room.Windows {
		validateWindow(path, &room.Windows[i], r)
	}
}

func validateWindow(roomPath string, w *building.Window, r *Report) {
	path := fmt.Sprintf("%s.windows[%s]", roomPath, w.ID)

	if w.Area() <= 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("window %s has zero area", w.ID),
			EntityPath:  path,
			ActualValue: w.Area(),
			Expected:    "width and height > 0",
		})
	}
	if w.Normal.Length() < 1e-9 {
		r.AddError(Result{
			Level:      LevelSchema,
			Message:    fmt.Sprintf("window %s normal is not normalizable", w.ID),
			EntityPath: path + ".normal",
			Expected:   "non-zero outward-facing vector",
		})
	}
	if w.Transmittance <= 0 || w.Transmittance > 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("window %s transmittance %.3f out of range", w.ID, w.Transmittance),
			EntityPath:  path + ".transmittance",
			ActualValue: w.Transmittance,
			Expected:    "(0, 1]",
		})
	}
	if w.FrameFactor <= 0 || w.FrameFactor > 1 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("window %s frame_factor %.3f out of range", w.ID, w.FrameFactor),
			EntityPath:  path + ".frame_factor",
			ActualValue: w.FrameFactor,
			Expected:    "(0, 1]",
		})
	}
	if w.IsVirtual && (w.TransmissionReduction <= 0 || w.TransmissionReduction > 1) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("virtual window %s transmission_reduction %.3f out of range", w.ID, w.TransmissionReduction),
			EntityPath:  path + ".transmission_reduction",
			ActualValue: w.TransmissionReduction,
			Expected:    "(0, 1]",
		})
	}
}

func validateObstruction(o *building.Obstruction, r *Report) {
	if o.Area() <= 1e-9 {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("obstruction %s has zero area and will be ignored", o.ID),
			EntityPath:  fmt.Sprintf("obstructions[%s]", o.ID),
			ActualValue: o.Area(),
			Expected:    "> 0",
		})
	}
}
