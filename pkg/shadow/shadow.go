// Package shadow answers whether a sun ray reaching a point is blocked
// by surrounding building surfaces. True-block only: a single
// ray/surface intersection shadows the point, with no partial shadow
// modeling.
package shadow

import (
	"fmt"
	"math"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/geo"
	"github.com/insolight/insolight/pkg/validation"
)

const (
	// selfEps discards intersections at the observer itself.
	selfEps = 1e-6
	// areaEps below which an obstruction is treated as degenerate.
	areaEps = 1e-9
)

// DefaultSearchRadius bounds the obstruction search in meters.
const DefaultSearchRadius = 500.0

// surface is a precomputed parallelogram obstruction.
type surface struct {
	id     string
	origin geo.Vec3
	e1, e2 geo.Vec3
	normal geo.Vec3
}

// Tester tests sun rays against a fixed set of obstructions.
type Tester struct {
	surfaces []surface
	radius   float64
	report   *validation.Report
}

// NewTester precomputes the obstruction set. Degenerate (zero-area)
// obstructions are skipped with a warning on the tester's report; they
// never block a ray and never fail the run.
func NewTester(obstructions []building.Obstruction, searchRadius float64) *Tester {
	if searchRadius <= 0 {
		searchRadius = DefaultSearchRadius
	}
	t := &Tester{radius: searchRadius, report: validation.NewReport()}

	for _, o := range obstructions {
		n := o.Edge1.Cross(o.Edge2)
		if n.Length() < areaEps {
			t.report.AddWarning(validation.Result{
				Level:      validation.LevelGeometry,
				Message:    fmt.Sprintf("obstruction %s has zero area; skipped for shadow testing", o.ID),
				EntityPath: fmt.Sprintf("obstructions[%s]", o.ID),
			})
			continue
		}
		t.surfaces = append(t.surfaces, surface{
			id:     o.ID,
			origin: o.Origin,
			e1:     o.Edge1,
			e2:     o.Edge2,
			normal: n.Normalize(),
		})
	}
	return t
}

// Report returns geometry findings collected while building the tester.
func (t *Tester) Report() *validation.Report {
	return t.report
}

// Blocked reports whether the ray from p toward the sun along dir hits
// any obstruction surface within the search radius. An intersection at
// distance ~0 is ignored as self-intersection noise.
func (t *Tester) Blocked(p, dir geo.Vec3) bool {
	d := dir.Normalize()
	if d.Length() < selfEps {
		return false
	}
	for _, s := range t.surfaces {
		if t.hits(s, p, d) {
			return true
		}
	}
	return false
}

// hits intersects the ray p + k*d with the parallelogram s.
func (t *Tester) hits(s surface, p, d geo.Vec3) bool {
	denom := d.Dot(s.normal)
	if math.Abs(denom) < 1e-12 {
		// Ray parallel to the surface plane.
		return false
	}
	k := s.origin.Sub(p).Dot(s.normal) / denom
	if k < selfEps || k > t.radius {
		return false
	}

	// Express the hit point in the surface's edge basis.
	hit := p.Add(d.Scale(k)).Sub(s.origin)
	e11 := s.e1.Dot(s.e1)
	e22 := s.e2.Dot(s.e2)
	e12 := s.e1.Dot(s.e2)
	det := e11*e22 - e12*e12
	if math.Abs(det) < 1e-12 {
		return false
	}
	h1 := hit.Dot(s.e1)
	h2 := hit.Dot(s.e2)
	u := (h1*e22 - h2*e12) / det
	v := (h2*e11 - h1*e12) / det

	return u >= 0 && u <= 1 && v >= 0 && v <= 1
}
