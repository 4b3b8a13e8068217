package db

import (
	"context"
	"io"
	"testing"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
)

func TestDSN(t *testing.T) {
	conf := Configuration{
		Host:     "172.17.0.2",
		Port:     5432,
		User:     "postgres",
		Password: "mysecretpassword",
		Dbname:   "postgres",
	}
	exp := "host=172.17.0.2 port=5432 user=postgres password=mysecretpassword dbname=postgres sslmode=disable"
	if got := conf.DSN(); got != exp {
		t.Fatalf("got %q", got)
	}
}

func TestRecordWithoutConnection(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	r := New(log, Configuration{})
	ctx := context.Background()

	if err := r.Record(ctx, app.Event{Kind: app.EventStatus, Line: "Connected"}); err != nil {
		t.Fatalf("status events are not persisted, got %v", err)
	}
	fix := app.HorizontalFix{Azimuth: 1, Elevation: 2}
	if err := r.Record(ctx, app.Event{Kind: app.EventFix, Fix: &fix}); err == nil {
		t.Fatal("expected error without connection")
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}
