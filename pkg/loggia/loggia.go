// Package loggia normalizes rooms that sit behind a loggia or balcony.
// Such rooms have no directly-exterior window; the adapter synthesizes
// virtual windows at the loggia's exterior opening so the insolation
// and KEO engines can treat them like any other room. The adapter is
// the single point of truth for loggia semantics: downstream engines
// only see the transmission-reduction factor folded into the virtual
// window's effective transmittance.
package loggia

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/insolight/insolight/pkg/building"
)

// DefaultTransmission is the fraction of light passing the loggia
// enclosure when the caller supplies none.
const DefaultTransmission = 0.75

// Normalize returns a copy of the room with virtual windows synthesized
// at the loggia opening when the room has no exterior window. The input
// room is never mutated. Rooms without a loggia, rooms whose loggia has
// no exterior opening, and rooms that already have a real window pass
// through unchanged.
func Normalize(room building.Room, transmission float64) building.Room {
	if transmission <= 0 || transmission > 1 {
		transmission = DefaultTransmission
	}
	if room.Loggia == nil || room.HasExteriorWindow() {
		return room
	}
	lg := room.Loggia
	if !lg.HasExterior || lg.OpeningWidth <= 0 || lg.OpeningHeight <= 0 {
		// No exterior opening: the room keeps whatever windows it has
		// (possibly none), which is a valid non-compliant outcome.
		return room
	}

	virtual := building.Window{
		ID:                    fmt.Sprintf("loggia-%s-%s", lg.ID, virtualSuffix(room.ID, lg.ID)),
		Center:                lg.OpeningCenter,
		Normal:                lg.OpeningNormal.Normalize(),
		Width:                 lg.OpeningWidth,
		Height:                lg.OpeningHeight,
		Transmittance:         1.0, // open aperture, no glazing
		FrameFactor:           0.9, // loggia structure occludes part of the opening
		IsVirtual:             true,
		TransmissionReduction: transmission,
	}

	out := room
	out.Windows = make([]building.Window, 0, len(room.Windows)+1)
	out.Windows = append(out.Windows, room.Windows...)
	out.Windows = append(out.Windows, virtual)
	return out
}

// virtualSuffix derives a stable id suffix from the room and loggia
// ids. Normalization is a pure function of its inputs, so repeated runs
// over the same building must synthesize identically named windows.
func virtualSuffix(roomID, loggiaID string) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(roomID+"/"+loggiaID))
	return id.String()[:8]
}

// NormalizeAll applies Normalize to every room of the building and
// returns a new building value. The input is not mutated.
func NormalizeAll(b building.Building, transmission float64) building.Building {
	out := b
	out.Rooms = make([]building.Room, len(b.Rooms))
	for i, r := range b.Rooms {
		out.Rooms[i] = Normalize(r, transmission)
	}
	return out
}
