package resolver

import (
	"fmt"
	"math"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

// equatorial radius of globe.Earth76, km
const earthRadius = 6378.14

// horizontal transforms an apparent position into compass azimuth and
// elevation in degrees for the observer at the given UT Julian day.
func horizontal(pos apparent, obs app.ObserverLocation, jd float64) (az, el float64, err error) {
	if math.IsNaN(obs.Lat) || obs.Lat < -90 || obs.Lat > 90 {
		return 0, 0, fmt.Errorf("latitude %v out of range [-90, 90]", obs.Lat)
	}
	if math.IsNaN(obs.Lon) || obs.Lon < -180 || obs.Lon > 180 {
		return 0, 0, fmt.Errorf("longitude %v out of range [-180, 180]", obs.Lon)
	}

	φ := unit.AngleFromDeg(obs.Lat)
	// meeus longitudes are measured positively west
	ψ := unit.AngleFromDeg(-obs.Lon)
	st := sidereal.Apparent(jd)

	α, δ := pos.RA, pos.Dec
	if pos.Dist > 0 {
		α, δ = topocentric(pos, φ, ψ, st)
	}

	A, h := coord.EqToHz(α, δ, φ, ψ, st)
	// A is measured westward from the south
	az = math.Mod(A.Deg()+180, 360)
	if az < 0 {
		az += 360
	}
	el = h.Deg()
	if math.IsNaN(az) || math.IsNaN(el) {
		return 0, 0, fmt.Errorf("horizontal transform produced no solution")
	}
	return az, el, nil
}

// topocentric removes the diurnal parallax of a nearby body.
func topocentric(pos apparent, φ, ψ unit.Angle, st unit.Time) (unit.RA, unit.Angle) {
	ρsφ, ρcφ := globe.Earth76.ParallaxConstants(φ, 0)
	d := pos.Dist / earthRadius

	H := st.Rad() - ψ.Rad() - pos.RA.Rad()
	sδ, cδ := math.Sincos(pos.Dec.Rad())
	sH, cH := math.Sincos(H)

	x := d*cδ*cH - ρcφ
	y := d * cδ * sH
	z := d*sδ - ρsφ

	Ht := math.Atan2(y, x)
	δt := math.Atan2(z, math.Hypot(x, y))
	return unit.RAFromRad(st.Rad() - ψ.Rad() - Ht), unit.Angle(δt)
}
