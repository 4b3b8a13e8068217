package stdout

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestDisplaySink(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard

	s := New(log)
	if err := s.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Sink(context.Background(), time.Now(), []byte("<1.00,2.00,0.9994,0.0174,0.0349>")); err != nil {
		t.Fatal(err)
	}
	if s.Device() || s.Name() != "display" {
		t.Fatal("display sink reported as device")
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
