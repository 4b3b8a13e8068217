package stdout

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// StdOutSinker is the display-only sink: payloads never leave the process and
// the operator line travels through the event stream.
type StdOutSinker struct {
	Log *logrus.Logger
}

func New(log *logrus.Logger) *StdOutSinker {
	return &StdOutSinker{Log: log}
}

func (s *StdOutSinker) Init(ctx context.Context) error {
	//Nothing to do here
	return nil
}

func (s *StdOutSinker) Sink(ctx context.Context, t time.Time, payload []byte) error {
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"payload": string(payload),
	}).Trace("Display sink, payload not transmitted")
	return nil
}

func (s *StdOutSinker) Close() error {
	return nil
}

func (s *StdOutSinker) Device() bool {
	return false
}

func (s *StdOutSinker) Name() string {
	return "display"
}
