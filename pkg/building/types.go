package building

import (
	"time"

	"github.com/insolight/insolight/pkg/geo"
)

// Location is the geographic position of a building site.
type Location struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
	Timezone  string  `yaml:"timezone" json:"timezone"`
}

// TZ resolves the location's timezone identifier.
func (l Location) TZ() (*time.Location, error) {
	return time.LoadLocation(l.Timezone)
}

// Window is a glazed opening owned by a room. Created at import time or
// synthesized by the loggia adapter; immutable after creation.
type Window struct {
	ID           string   `yaml:"id" json:"id"`
	Center       geo.Vec3 `yaml:"center" json:"center"`
	Normal       geo.Vec3 `yaml:"normal" json:"normal"` // outward-facing
	Width        float64  `yaml:"width" json:"width"`
	Height       float64  `yaml:"height" json:"height"`
	Transmittance float64 `yaml:"transmittance" json:"transmittance"`
	FrameFactor  float64  `yaml:"frame_factor" json:"frame_factor"`

	// Loggia-derived virtual windows carry a transmission reduction that
	// both engines fold into the effective transmittance.
	IsVirtual             bool    `yaml:"is_virtual,omitempty" json:"is_virtual,omitempty"`
	TransmissionReduction float64 `yaml:"transmission_reduction,omitempty" json:"transmission_reduction,omitempty"`

	// Extra holds opaque import attributes the engines never read.
	Extra map[string]any `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// Area returns the glazed opening area in square meters.
func (w Window) Area() float64 {
	return w.Width * w.Height
}

// EffectiveTransmittance returns the glazing transmittance with the
// loggia transmission reduction applied for virtual windows.
func (w Window) EffectiveTransmittance() float64 {
	tau := w.Transmittance
	if w.IsVirtual && w.TransmissionReduction > 0 {
		tau *= w.TransmissionReduction
	}
	return tau
}

// Loggia describes a recessed balcony-like space bounding a room.
// Rooms behind a loggia may have no direct exterior window; the adapter
// synthesizes virtual windows at the loggia's exterior opening.
type Loggia struct {
	ID            string   `yaml:"id" json:"id"`
	OpeningCenter geo.Vec3 `yaml:"opening_center" json:"opening_center"`
	OpeningNormal geo.Vec3 `yaml:"opening_normal" json:"opening_normal"`
	OpeningWidth  float64  `yaml:"opening_width" json:"opening_width"`
	OpeningHeight float64  `yaml:"opening_height" json:"opening_height"`
	HasExterior   bool     `yaml:"has_exterior" json:"has_exterior"`
}

// Room is a building space with exclusive ownership of its windows.
type Room struct {
	ID      string        `yaml:"id" json:"id"`
	Name    string        `yaml:"name,omitempty" json:"name,omitempty"`
	Plan    []geo.Point2D `yaml:"plan" json:"plan"` // floor polygon, plan coordinates
	Height  float64       `yaml:"height" json:"height"`
	Level   int           `yaml:"level" json:"level"`
	Windows []Window      `yaml:"windows" json:"windows"`
	Loggia  *Loggia       `yaml:"loggia,omitempty" json:"loggia,omitempty"`

	Extra map[string]any `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// PlanPolygon returns the floor plan as a geo.Polygon.
func (r Room) PlanPolygon() geo.Polygon {
	return geo.Polygon{Vertices: r.Plan}
}

// FloorArea returns the plan polygon area in square meters.
func (r Room) FloorArea() float64 {
	return r.PlanPolygon().Area()
}

// HasExteriorWindow reports whether the room has at least one real
// (non-virtual) window.
func (r Room) HasExteriorWindow() bool {
	for _, w := range r.Windows {
		if !w.IsVirtual {
			return true
		}
	}
	return false
}

// Obstruction is an opaque external surface (a neighboring facade)
// modeled as a parallelogram: origin plus two edge vectors.
type Obstruction struct {
	ID     string   `yaml:"id" json:"id"`
	Origin geo.Vec3 `yaml:"origin" json:"origin"`
	Edge1  geo.Vec3 `yaml:"edge1" json:"edge1"`
	Edge2  geo.Vec3 `yaml:"edge2" json:"edge2"`
}

// Area returns the surface area in square meters.
func (o Obstruction) Area() float64 {
	return o.Edge1.Cross(o.Edge2).Length()
}

// Building is the root of the imported model graph. Read-only for the
// duration of a calculation run.
type Building struct {
	ID           string        `yaml:"id" json:"id"`
	Name         string        `yaml:"name,omitempty" json:"name,omitempty"`
	Location     Location      `yaml:"location" json:"location"`
	Rooms        []Room        `yaml:"rooms" json:"rooms"`
	Obstructions []Obstruction `yaml:"obstructions,omitempty" json:"obstructions,omitempty"`

	Extra map[string]any `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// WindowCount returns the total number of windows across all rooms.
func (b Building) WindowCount() int {
	n := 0
	for _, r := range b.Rooms {
		n += len(r.Windows)
	}
	return n
}

// RoomByID returns the room with the given id, or nil if not found.
func (b *Building) RoomByID(id string) *Room {
	for i := range b.Rooms {
		if b.Rooms[i].ID == id {
			return &b.Rooms[i]
		}
	}
	return nil
}
