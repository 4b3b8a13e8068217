package resolver

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pe "github.com/soniakeys/meeus/v3/planetelements"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

const (
	// TT-UT in seconds, held constant
	deltaT = 69.2
	// days per AU of light travel
	lightTimeDays = 0.0057755183
	j2000         = 2451545.0
)

var planets = map[string]int{
	"mercury": pe.Mercury,
	"venus":   pe.Venus,
	"mars":    pe.Mars,
	"jupiter": pe.Jupiter,
	"saturn":  pe.Saturn,
	"uranus":  pe.Uranus,
	"neptune": pe.Neptune,
}

// SkyPosition is a catalog position referred to the J2000 equator and equinox, in degrees.
type SkyPosition struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// apparent is a geocentric equatorial position of date. Dist is the geocentric
// distance in km when parallax matters, zero otherwise.
type apparent struct {
	RA   unit.RA
	Dec  unit.Angle
	Dist float64
}

func bodyPosition(name string, jde float64) (apparent, error) {
	switch name {
	case "sun":
		α, δ := solar.ApparentEquatorial(jde)
		return apparent{RA: α, Dec: δ}, nil
	case "moon":
		λ, β, Δ := moonposition.Position(jde)
		α, δ := eclipticOfDateToEquatorial(λ, β, jde)
		return apparent{RA: α, Dec: δ, Dist: Δ}, nil
	}
	p, ok := planets[name]
	if !ok {
		return apparent{}, fmt.Errorf("no ephemeris for %q", name)
	}
	λ, β := planetGeocentric(p, jde)
	α, δ := eclipticOfDateToEquatorial(λ, β, jde)
	if math.IsNaN(α.Rad()) || math.IsNaN(δ.Rad()) {
		return apparent{}, fmt.Errorf("ephemeris diverged for %q", name)
	}
	return apparent{RA: α, Dec: δ}, nil
}

// eclipticOfDateToEquatorial applies nutation in longitude and the true obliquity.
func eclipticOfDateToEquatorial(λ, β unit.Angle, jde float64) (unit.RA, unit.Angle) {
	Δψ, Δε := nutation.Nutation(jde)
	ε := nutation.MeanObliquity(jde) + Δε
	sε, cε := math.Sincos(ε.Rad())
	return coord.EclToEq(λ+Δψ, β, sε, cε)
}

// planetGeocentric returns the geocentric ecliptic longitude and latitude of
// date, corrected for light time.
func planetGeocentric(p int, jde float64) (unit.Angle, unit.Angle) {
	ex, ey, ez := earthHeliocentric(jde)
	px, py, pz := heliocentric(p, jde)
	x, y, z := px-ex, py-ey, pz-ez

	τ := lightTimeDays * math.Sqrt(x*x+y*y+z*z)
	px, py, pz = heliocentric(p, jde-τ)
	x, y, z = px-ex, py-ey, pz-ez

	λ := math.Atan2(y, x)
	β := math.Atan2(z, math.Hypot(x, y))
	return unit.Angle(λ), unit.Angle(β)
}

// earthHeliocentric is the opposite of the geometric geocentric Sun. The
// planetelements table carries no node for Earth, so pe.Mean cannot serve it.
func earthHeliocentric(jde float64) (x, y, z float64) {
	T := (jde - j2000) / 36525
	s, _ := solar.True(T)
	R := solar.Radius(T)
	sλ, cλ := math.Sincos(s.Rad() + math.Pi)
	return R * cλ, R * sλ, 0
}

// heliocentric returns rectangular ecliptic coordinates of date in AU from the
// mean orbital elements. p must not be pe.Earth.
func heliocentric(p int, jde float64) (x, y, z float64) {
	var e pe.Elements
	pe.Mean(p, jde, &e)

	L := float64(e.Lon)
	ϖ := float64(e.Peri)
	Ω := float64(e.Node)
	i := float64(e.Inc)

	E := eccentricAnomaly(e.Ecc, L-ϖ)
	ν := 2 * math.Atan2(math.Sqrt(1+e.Ecc)*math.Sin(E/2), math.Sqrt(1-e.Ecc)*math.Cos(E/2))
	r := e.Axis * (1 - e.Ecc*math.Cos(E))

	// argument of latitude
	u := ν + ϖ - Ω
	su, cu := math.Sincos(u)
	sΩ, cΩ := math.Sincos(Ω)
	si, ci := math.Sincos(i)
	x = r * (cΩ*cu - sΩ*su*ci)
	y = r * (sΩ*cu + cΩ*su*ci)
	z = r * su * si
	return
}

// eccentricAnomaly solves Kepler's equation by Newton iteration.
func eccentricAnomaly(e, M float64) float64 {
	M = math.Mod(M, 2*math.Pi)
	E := M
	if e > 0.8 {
		E = math.Pi
	}
	for n := 0; n < 50; n++ {
		d := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= d
		if math.Abs(d) < 1e-12 {
			break
		}
	}
	return E
}

// precessToDate moves a J2000 catalog position to the mean equinox of date.
func precessToDate(pos SkyPosition, jde float64) apparent {
	epoch := 2000 + (jde-j2000)/365.25
	from := &coord.Equatorial{
		RA:  unit.RAFromDeg(pos.RA),
		Dec: unit.AngleFromDeg(pos.Dec),
	}
	to := precess.NewPrecessor(2000, epoch).Precess(from, &coord.Equatorial{})
	return apparent{RA: to.RA, Dec: to.Dec}
}
