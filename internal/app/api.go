package app

import (
	"context"
	"math"
	"strings"
	"time"
)

//ObserverLocation - geographic position of the mount, immutable for a session
type ObserverLocation struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

//TargetSpec - free text identifier of the tracked body
type TargetSpec string

// SolarSystemBodies is the closed set of names resolved from an ephemeris
// instead of the name index.
var SolarSystemBodies = []string{"sun", "moon", "mercury", "venus", "mars", "jupiter", "saturn", "uranus", "neptune"}

// Normalized returns the trimmed, lower-cased name.
func (t TargetSpec) Normalized() string {
	return strings.ToLower(strings.TrimSpace(string(t)))
}

// SolarSystem reports whether the target belongs to SolarSystemBodies.
func (t TargetSpec) SolarSystem() bool {
	n := t.Normalized()
	for _, b := range SolarSystemBodies {
		if n == b {
			return true
		}
	}
	return false
}

func (t TargetSpec) String() string {
	return strings.TrimSpace(string(t))
}

//HorizontalFix - pointing solution for one instant
type HorizontalFix struct {
	Azimuth   float64    `json:"azimuth"`   // degrees, [0,360)
	Elevation float64    `json:"elevation"` // degrees, [-90,90]
	Vector    [3]float64 `json:"vector"`
	Time      time.Time  `json:"time"`
}

// NewHorizontalFix builds a fix and its unit vector from azimuth and elevation in degrees.
func NewHorizontalFix(az, el float64, t time.Time) HorizontalFix {
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	if az >= 360 {
		az = 0
	}
	azRad := az * math.Pi / 180
	elRad := el * math.Pi / 180
	return HorizontalFix{
		Azimuth:   az,
		Elevation: el,
		Vector: [3]float64{
			math.Cos(elRad) * math.Cos(azRad),
			math.Cos(elRad) * math.Sin(azRad),
			math.Sin(elRad),
		},
		Time: t,
	}
}

// BelowHorizon reports a negative elevation.
func (f HorizontalFix) BelowHorizon() bool {
	return f.Elevation < 0
}

//Result - outcome of one resolution: either Fix or Err is set
type Result struct {
	Fix *HorizontalFix
	Err error
}

// Fix wraps a successful resolution.
func Fix(f HorizontalFix) Result {
	return Result{Fix: &f}
}

// Failure wraps a failed resolution.
func Failure(err error) Result {
	return Result{Err: err}
}

// OK reports whether the result carries a fix.
func (r Result) OK() bool {
	return r.Fix != nil && r.Err == nil
}

// Reason is the operator facing failure message.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

//State - lifecycle of the tracking loop
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

//EventKind - type of line emitted by the tracking loop
type EventKind string

const (
	EventStatus    EventKind = "status"
	EventWarning   EventKind = "warning"
	EventFix       EventKind = "fix"
	EventError     EventKind = "error"
	EventTransport EventKind = "transport"
	EventClosed    EventKind = "closed"
)

//Event - one entry of the session output stream
type Event struct {
	Kind    EventKind      `json:"kind"`
	Session string         `json:"session"`
	Target  string         `json:"target"`
	Time    time.Time      `json:"time"`
	Line    string         `json:"line"`
	Payload string         `json:"payload,omitempty"`
	Sent    bool           `json:"sent,omitempty"`
	Err     string         `json:"error,omitempty"`
	Fix     *HorizontalFix `json:"fix,omitempty"`
}

// Display is the line an operator console shows for the event.
func (e Event) Display() string {
	switch {
	case e.Kind == EventFix && e.Sent:
		return "Sent: " + e.Payload
	case e.Kind == EventTransport:
		return e.Line + " [device write failed: " + e.Err + "]"
	default:
		return e.Line
	}
}

//Resolver - turns a target and an observer into a horizontal fix
type Resolver interface {
	Resolve(ctx context.Context, target TargetSpec, obs ObserverLocation, now time.Time) Result
}

//Sinker - output sink receiving the device payload of every fix
type Sinker interface {
	Init(ctx context.Context) error
	Sink(ctx context.Context, t time.Time, payload []byte) error
	Close() error
	Device() bool
	Name() string
}

//Recorder - consumer persisting session events
type Recorder interface {
	Init(ctx context.Context) error
	Record(ctx context.Context, ev Event) error
	Close() error
}
