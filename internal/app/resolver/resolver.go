// Package resolver turns a body name and an observer location into a
// horizontal fix. Solar system bodies come from the meeus ephemerides, any
// other name is looked up in an external name index.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
	"github.com/soniakeys/meeus/v3/julian"
)

//NameLookup - resolves a catalog identifier to a J2000 position
type NameLookup interface {
	Lookup(ctx context.Context, name string) (SkyPosition, error)
}

// Resolver is stateless and safe for concurrent use.
type Resolver struct {
	Log    *logrus.Logger
	lookup NameLookup
}

func New(log *logrus.Logger, lookup NameLookup) *Resolver {
	return &Resolver{Log: log, lookup: lookup}
}

// Resolve computes the fix of target seen from obs at now. Every failure,
// including a panic in the ephemeris code, comes back as a Failure result.
func (r *Resolver) Resolve(ctx context.Context, target app.TargetSpec, obs app.ObserverLocation, now time.Time) (res app.Result) {
	defer func() {
		if p := recover(); p != nil {
			res = failure(target, "internal", fmt.Errorf("%v", p))
		}
	}()

	jd := julian.TimeToJD(now.UTC())
	jde := jd + deltaT/86400

	var pos apparent
	if target.SolarSystem() {
		var err error
		pos, err = bodyPosition(target.Normalized(), jde)
		if err != nil {
			return failure(target, "ephemeris", err)
		}
	} else {
		if r.lookup == nil {
			return failure(target, "lookup", fmt.Errorf("no name index configured"))
		}
		sky, err := r.lookup.Lookup(ctx, target.String())
		if err != nil {
			return failure(target, "lookup", err)
		}
		pos = precessToDate(sky, jde)
	}

	az, el, err := horizontal(pos, obs, jd)
	if err != nil {
		return failure(target, "transform", err)
	}

	if r.Log != nil {
		r.Log.WithContext(ctx).WithFields(logrus.Fields{
			"target":    target.String(),
			"azimuth":   az,
			"elevation": el,
		}).Debug("Resolved")
	}
	return app.Fix(app.NewHorizontalFix(az, el, now))
}

func failure(target app.TargetSpec, stage string, err error) app.Result {
	return app.Failure(&app.ResolutionError{Target: target.String(), Stage: stage, Err: err})
}
