package service

import (
	"context"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	stdoutSinker "github.com/francois-poidevin/astrotracker/internal/app/sinkers/stdout"
	"github.com/sirupsen/logrus"
)

func (t *Tracker) run(ctx context.Context, s *Session) {
	defer close(s.done)
	log := t.Log.WithContext(ctx).WithFields(logrus.Fields{
		"session": s.ID,
		"target":  s.Target.String(),
	})

	sink := t.connect(ctx, s, log)
	t.metrics.SetSession(true, sink.Device())

	defer func() {
		s.setState(app.StateStopping)
		if err := sink.Close(); err != nil {
			log.WithFields(logrus.Fields{
				"Error": err,
			}).Warn("Unable to close sink")
		}
		line := "Tracking stopped."
		if sink.Device() {
			line = "Tracking stopped. Serial connection closed."
		}
		t.emit(s, app.Event{Kind: app.EventClosed, Line: line})
		t.metrics.SetSession(false, false)
		s.setState(app.StateIdle)
		log.Info("Session closed")
	}()

	s.setState(app.StateRunning)
	log.WithFields(logrus.Fields{
		"sink":     sink.Name(),
		"interval": t.interval.String(),
	}).Info("Tracking")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		t.tick(ctx, s, sink)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// connect opens the device sink, falling back to the display sink.
func (t *Tracker) connect(ctx context.Context, s *Session, log *logrus.Entry) app.Sinker {
	s.setState(app.StateConnecting)

	if t.device != nil {
		dev := t.device()
		err := dev.Init(ctx)
		if err == nil {
			t.emit(s, app.Event{Kind: app.EventStatus, Line: "Connected to " + dev.Name()})
			return dev
		}
		log.WithFields(logrus.Fields{
			"Error": err,
		}).Warn("Device unavailable, falling back to display")
		t.emit(s, app.Event{Kind: app.EventWarning, Line: "Device not found, printing here.", Err: err.Error()})
	} else {
		t.emit(s, app.Event{Kind: app.EventWarning, Line: "No device configured, printing here."})
	}

	display := stdoutSinker.New(t.Log)
	_ = display.Init(ctx)
	return display
}

// tick emits exactly one event, unless the session was cancelled meanwhile.
func (t *Tracker) tick(ctx context.Context, s *Session, sink app.Sinker) {
	now := t.now()
	start := time.Now()
	res := t.resolver.Resolve(ctx, s.Target, s.Observer, now)
	elapsed := time.Since(start)
	if ctx.Err() != nil {
		return
	}

	ev := app.Event{Time: now}
	if !res.OK() {
		ev.Kind = app.EventError
		ev.Err = res.Reason()
		ev.Line = app.FormatError(s.Target, ev.Err)
		t.metrics.ObserveTick("error", elapsed)
		t.emit(s, ev)
		return
	}

	ev.Kind = app.EventFix
	ev.Fix = res.Fix
	ev.Line = app.FormatLine(*res.Fix)
	ev.Payload = app.FormatPayload(*res.Fix)

	outcome := "fix"
	if err := sink.Sink(ctx, now, []byte(ev.Payload)); err != nil {
		if ctx.Err() != nil {
			return
		}
		ev.Kind = app.EventTransport
		ev.Err = err.Error()
		outcome = "transport"
	} else {
		ev.Sent = sink.Device()
	}

	t.metrics.ObserveTick(outcome, elapsed)
	t.emit(s, ev)
}
