// Package sun computes solar geometry for daylight calculations: sun
// azimuth/elevation for an instant, and sunrise/sunset bounds for a
// date. All functions are pure; accuracy is sub-degree, which is well
// inside the regulatory error budget (duration uncertainty is dominated
// by the sampling time step, not the ephemeris).
package sun

import (
	"math"
	"time"

	"github.com/insolight/insolight/pkg/building"
	"github.com/insolight/insolight/pkg/geo"
)

const degToRad = math.Pi / 180

// Polar marks a date with no sunrise/sunset transition at the location.
type Polar string

const (
	PolarNone  Polar = ""
	PolarDay   Polar = "day"
	PolarNight Polar = "night"
)

// Daylight holds the sunrise/sunset bounds for one date in local civil
// time. On polar days the bounds span the whole calendar day; on polar
// nights they are zero values and Polar is set accordingly.
type Daylight struct {
	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`
	Polar   Polar     `json:"polar,omitempty"`
}

// Hours returns the daylight duration in fractional hours.
func (d Daylight) Hours() float64 {
	if d.Polar == PolarNight {
		return 0
	}
	return d.Sunset.Sub(d.Sunrise).Hours()
}

// declination returns the solar declination in degrees for a day of year.
func declination(dayOfYear int) float64 {
	return 23.45 * math.Sin(degToRad*360*float64(284+dayOfYear)/365)
}

// solarTime converts a civil instant to local solar time in fractional
// hours, correcting for the longitude offset within the timezone.
func solarTime(t time.Time, longitude float64) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60 +
		float64(t.Second())/3600 + float64(t.Nanosecond())/3.6e12
	_, offset := t.Zone()
	offsetHours := float64(offset) / 3600
	return hour + longitude/15 - offsetHours
}

// Position returns the sun azimuth and elevation in degrees for the
// given location and instant. Azimuth is measured from north through
// east (0 north, 90 east, 180 south); elevation is 0 at the horizon
// and 90 at zenith. The instant's own timezone is used for the solar
// time correction.
func Position(loc building.Location, t time.Time) (azimuth, elevation float64) {
	latRad := loc.Latitude * degToRad
	declRad := declination(t.YearDay()) * degToRad

	hourAngle := 15 * (solarTime(t, loc.Longitude) - 12)
	hourAngleRad := hourAngle * degToRad

	sinElev := math.Sin(latRad)*math.Sin(declRad) +
		math.Cos(latRad)*math.Cos(declRad)*math.Cos(hourAngleRad)
	sinElev = math.Max(-1, math.Min(1, sinElev))
	elevRad := math.Asin(sinElev)
	elevation = elevRad / degToRad

	cosAz := (math.Sin(declRad) - math.Sin(latRad)*sinElev) /
		(math.Cos(latRad) * math.Cos(elevRad))
	cosAz = math.Max(-1, math.Min(1, cosAz))
	azRad := math.Acos(cosAz)

	if hourAngle > 0 {
		azimuth = 360 - azRad/degToRad
	} else {
		azimuth = azRad / degToRad
	}
	return azimuth, elevation
}

// Above reports whether the given elevation is above the horizon.
func Above(elevation float64) bool {
	return elevation > 0
}

// Direction returns the unit vector pointing from an observer toward
// the sun, in the local building frame (X east, Y north, Z up).
func Direction(azimuth, elevation float64) geo.Vec3 {
	azRad := azimuth * degToRad
	elRad := elevation * degToRad
	return geo.Vec3{
		X: math.Sin(azRad) * math.Cos(elRad),
		Y: math.Cos(azRad) * math.Cos(elRad),
		Z: math.Sin(elRad),
	}
}

// DaylightBounds returns sunrise and sunset for the given date as local
// civil time instants in tz. The hour-angle formula cos H0 = -tan(lat)
// tan(decl) decides polar day/night when it leaves [-1, 1].
func DaylightBounds(loc building.Location, date time.Time, tz *time.Location) Daylight {
	year, month, day := date.Date()
	noon := time.Date(year, month, day, 12, 0, 0, 0, tz)

	latRad := loc.Latitude * degToRad
	declRad := declination(noon.YearDay()) * degToRad

	cosH0 := -math.Tan(latRad) * math.Tan(declRad)
	switch {
	case cosH0 <= -1:
		// Sun never sets: bounds span the whole civil day.
		return Daylight{
			Sunrise: time.Date(year, month, day, 0, 0, 0, 0, tz),
			Sunset:  time.Date(year, month, day+1, 0, 0, 0, 0, tz),
			Polar:   PolarDay,
		}
	case cosH0 >= 1:
		// Sun never rises.
		return Daylight{Polar: PolarNight}
	}

	h0 := math.Acos(cosH0) / degToRad

	_, offset := noon.Zone()
	offsetHours := float64(offset) / 3600
	// Solar-to-clock conversion inverts the solarTime correction.
	clockOf := func(solar float64) time.Time {
		clock := solar - loc.Longitude/15 + offsetHours
		secs := int(math.Round(clock * 3600))
		return time.Date(year, month, day, 0, 0, secs, 0, tz)
	}

	return Daylight{
		Sunrise: clockOf(12 - h0/15),
		Sunset:  clockOf(12 + h0/15),
	}
}
