package calc

import (
	"github.com/insolight/insolight/pkg/geo"
	"github.com/insolight/insolight/pkg/insolation"
	"github.com/insolight/insolight/pkg/keo"
	"github.com/insolight/insolight/pkg/validation"
)

// Summary counts compliance across the evaluated units of a run.
type Summary struct {
	Total          int     `json:"total"`
	Compliant      int     `json:"compliant"`
	NonCompliant   int     `json:"non_compliant"`
	Errors         int     `json:"errors"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// RoomInsolation is the room-level insolation aggregate: rooms are
// judged by their best-exposed window.
type RoomInsolation struct {
	RoomID           string `json:"room_id"`
	BestWindowID     string `json:"best_window_id,omitempty"`
	TotalSeconds     int64  `json:"total_seconds"`
	MeetsRequirement bool   `json:"meets_requirement"`
}

// BuildingInsolationResult maps window ids to their insolation results
// for one date. A plain serializable value for the reporting layer.
type BuildingInsolationResult struct {
	BuildingID string                       `json:"building_id"`
	Date       string                       `json:"date"`
	Windows    map[string]insolation.Result `json:"windows"`
	Rooms      map[string]RoomInsolation    `json:"rooms"`
	Summary    Summary                      `json:"summary"`
	Report     *validation.Report           `json:"report"`
}

func (r *BuildingInsolationResult) finishInsolation() {
	s := Summary{Total: len(r.Windows)}
	for _, wr := range r.Windows {
		switch {
		case wr.Status == insolation.StatusError:
			s.Errors++
		case wr.MeetsRequirement:
			s.Compliant++
		default:
			s.NonCompliant++
		}
	}
	if s.Total > 0 {
		s.ComplianceRate = float64(s.Compliant) / float64(s.Total)
	}
	r.Summary = s
}

// RoomKEOPoint is the room-level KEO at one sample point: the sum of
// every window's contribution there (windows do not compete).
type RoomKEOPoint struct {
	Point            geo.Vec3 `json:"point"`
	Total            float64  `json:"total"`
	MeetsRequirement bool     `json:"meets_requirement"`
}

// BuildingKEOResult maps window ids to their per-point KEO results.
// Room-level aggregation beyond the per-point sum (worst point,
// percentage of passing points) is left to the caller.
type BuildingKEOResult struct {
	BuildingID string                    `json:"building_id"`
	Windows    map[string][]keo.Result   `json:"windows"`
	Rooms      map[string][]RoomKEOPoint `json:"rooms"`
	Summary    Summary                   `json:"summary"`
	Report     *validation.Report        `json:"report"`
}

func (r *BuildingKEOResult) finishKEO() {
	s := Summary{}
	for _, points := range r.Rooms {
		for _, p := range points {
			s.Total++
			if p.MeetsRequirement {
				s.Compliant++
			} else {
				s.NonCompliant++
			}
		}
	}
	if s.Total > 0 {
		s.ComplianceRate = float64(s.Compliant) / float64(s.Total)
	}
	r.Summary = s
}
