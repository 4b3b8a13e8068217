package service

import (
	"context"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
)

const recorderBuffer = 256

// Attach initialises rec and feeds it every event of t on its own goroutine.
// The returned function detaches, drains what is buffered and closes rec.
func Attach(ctx context.Context, log *logrus.Logger, t *Tracker, rec app.Recorder) (func(), error) {
	if err := rec.Init(ctx); err != nil {
		return nil, err
	}

	events, unsubscribe := t.Subscribe(recorderBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if err := rec.Record(ctx, ev); err != nil {
				log.WithContext(ctx).WithFields(logrus.Fields{
					"Error":   err,
					"session": ev.Session,
					"kind":    ev.Kind,
				}).Error("Unable to record event")
			}
		}
	}()

	return func() {
		unsubscribe()
		<-done
		if err := rec.Close(); err != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": err,
			}).Error("Unable to close recorder")
		}
	}, nil
}
