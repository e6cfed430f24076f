// Package keo computes the coefficient of natural illumination for
// side-lit rooms. Per sample point and window the value is the sum of
// three non-negative components: direct sky light through the aperture,
// light reflected off external facades, and light interreflected from
// room surfaces. The sky component reproduces the regulatory
// side-lighting expression in its published algebraic form; compliance
// checking depends on matching the regulator's reference values, so the
// formula is not re-derived here.
package keo

import (
	"context"
	"math"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/geo"
)

// Defaults for engine parameters left unset by the caller.
const (
	DefaultWorkingPlane        = 0.8 // meters above floor
	DefaultExternalReflectance = 0.2
	DefaultInternalReflectance = 0.5
)

// Regulatory constants of the side-lighting formula.
const (
	lightClimateCoefficient = 1.0
	// Scaling of the aperture solid angle to the coefficient range of
	// the regulatory tables.
	geometricScale = 0.1
	// Fraction of direct facade light that reaches the point after one
	// external reflection.
	externalFraction = 0.2
	// Scale of the interreflection coefficient relative to the sky
	// component.
	internalFraction = 0.25
)

// brightnessUnevenness is q = (1 + 2 sin(45°)) / 3, the CIE overcast
// sky brightness at the mean sky section elevation for side apertures.
var brightnessUnevenness = (1.0 + 2.0*math.Sin(45*math.Pi/180)) / 3.0

// Result is the KEO outcome at one sample point for one window.
// All component values are percentages.
type Result struct {
	WindowID          string   `json:"window_id"`
	Point             geo.Vec3 `json:"point"`
	Sky               float64  `json:"sky"`
	ExternalReflected float64  `json:"external_reflected"`
	InternalReflected float64  `json:"internal_reflected"`
	Total             float64  `json:"total"`
	MinRequired       float64  `json:"min_required"`
	MeetsRequirement  bool     `json:"meets_requirement"`
}

// Engine holds the sampling and photometric parameters of a KEO run.
type Engine struct {
	Density             float64 // sample points per m² of floor area
	WorkingPlane        float64 // sample plane height above floor, meters
	MinKEO              float64 // required minimum, percent
	ExternalReflectance float64 // facade brightness factor b_f
	InternalReflectance float64 // room surface reflectance ρ
}

// NewEngine fills unset parameters with defaults. Density must be
// validated by the caller before the run starts.
func NewEngine(density, minKEO float64) *Engine {
	return &Engine{
		Density:             density,
		WorkingPlane:        DefaultWorkingPlane,
		MinKEO:              minKEO,
		ExternalReflectance: DefaultExternalReflectance,
		InternalReflectance: DefaultInternalReflectance,
	}
}

// Grid returns the KEO sample points of a room: a cell-centered grid at
// the working-plane height with spacing 1/sqrt(density), filtered to
// the floor polygon. Point count scales with floor area times density.
// Rooms without a samplable plan yield no points.
func (e *Engine) Grid(room building.Room) []geo.Vec3 {
	poly := room.PlanPolygon()
	if poly.IsEmpty() || poly.Area() <= 0 || e.Density <= 0 {
		return nil
	}
	minP, maxP := poly.BoundingBox()
	dx := maxP.X - minP.X
	dy := maxP.Y - minP.Y

	spacing := 1 / math.Sqrt(e.Density)
	nx := int(math.Max(1, math.Round(dx/spacing)))
	ny := int(math.Max(1, math.Round(dy/spacing)))

	var pts []geo.Vec3
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			p := geo.Pt(
				minP.X+(float64(i)+0.5)*dx/float64(nx),
				minP.Y+(float64(j)+0.5)*dy/float64(ny),
			)
			if poly.Contains(p) {
				pts = append(pts, geo.V3(p.X, p.Y, e.WorkingPlane))
			}
		}
	}
	return pts
}

// ComputeForWindow evaluates the KEO contribution of one window at
// every grid point of the room. A room with zero windows produces an
// empty result set upstream; this method never fails for degenerate
// window geometry (contributions degrade to zero). Cancellation is
// checked between grid rows; completed points remain valid.
func (e *Engine) ComputeForWindow(ctx context.Context, room building.Room, w building.Window) ([]Result, error) {
	pts := e.Grid(room)
	results := make([]Result, 0, len(pts))
	for i, p := range pts {
		if i%16 == 0 {
			if err := ctx.Err(); err != nil {
				return results, err
			}
		}
		results = append(results, e.ComputeAt(room, w, p))
	}
	return results, nil
}

// ComputeAt evaluates one window's KEO contribution at one point.
func (e *Engine) ComputeAt(room building.Room, w building.Window, p geo.Vec3) Result {
	eps := e.geometric(p, w)

	floorArea := room.FloorArea()
	sky := 0.0
	if floorArea > 0 {
		sky = eps * lightClimateCoefficient * brightnessUnevenness / floorArea
	}
	sky = math.Max(0, sky)

	external := math.Max(0, eps*e.ExternalReflectance*externalFraction)
	internal := e.internalReflected(room, w)

	// Glazing transmittance and frame factor attenuate all three
	// components; virtual windows additionally carry the loggia
	// transmission reduction inside the effective transmittance.
	wf := w.EffectiveTransmittance() * w.FrameFactor

	r := Result{
		WindowID:          w.ID,
		Point:             p,
		Sky:               sky * wf * 100,
		ExternalReflected: external * wf * 100,
		InternalReflected: internal * wf * 100,
		MinRequired:       e.MinKEO,
	}
	r.Total = r.Sky + r.ExternalReflected + r.InternalReflected
	r.MeetsRequirement = r.Total >= e.MinKEO
	return r
}

// geometric computes the geometric KEO of a window seen from a point:
// the solid angle of the aperture, Ω = A·cosθ/d², scaled to the
// coefficient range of the regulatory tables.
func (e *Engine) geometric(p geo.Vec3, w building.Window) float64 {
	d := w.Center.Sub(p)
	dist := d.Length()
	if dist < 0.01 {
		return 0
	}
	normal := w.Normal.Normalize()
	dot := d.Scale(1 / dist).Dot(normal)
	if dot < 0 {
		// Window faces away from the point.
		return 0
	}
	cos := math.Min(1, dot)
	return geometricScale * w.Area() * cos / (dist * dist)
}

// internalReflected is the per-window share of the interreflection
// coefficient r, from the window-to-surface area ratio and the mean
// room reflectance.
func (e *Engine) internalReflected(room building.Room, w building.Window) float64 {
	floorArea := room.FloorArea()
	wallArea := room.PlanPolygon().Perimeter()*room.Height - w.Area()
	total := 2*floorArea + wallArea
	if total <= 0 {
		return 0
	}
	rho := e.InternalReflectance
	ratio := w.Area() / total
	r := rho * ratio / (1 - 0.8*rho)
	return math.Max(0, r*internalFraction)
}
