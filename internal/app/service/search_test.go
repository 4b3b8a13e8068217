package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/francois-poidevin/astrotracker/internal/app/sinkers/db"
)

// Runs against a live Postgres when ASTROTRACKER_TEST_PG_HOST is set.
func TestHistorySearch(t *testing.T) {
	host := os.Getenv("ASTROTRACKER_TEST_PG_HOST")
	if host == "" {
		t.Skip("ASTROTRACKER_TEST_PG_HOST not set")
	}
	conf := db.Configuration{
		Host:     host,
		Port:     5432,
		User:     "postgres",
		Password: "mysecretpassword",
		Dbname:   "postgres",
	}
	ctx := context.Background()

	rec := db.New(log, conf)
	if err := rec.Init(ctx); err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	ts := time.Now().UTC().Truncate(time.Second)
	fix := app.NewHorizontalFix(12.5, 40, ts)
	ev := app.Event{Kind: app.EventFix, Session: "history-test", Target: "Polaris", Time: ts, Fix: &fix, Payload: app.FormatPayload(fix)}
	if err := rec.Record(ctx, ev); err != nil {
		t.Fatal(err)
	}

	conn, err := db.Open(ctx, log, conf)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	found, err := NewHistory(log, conn).Search(ctx, "polaris", ts.Add(-time.Second), ts.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range found {
		if r.Session == "history-test" && r.Payload == ev.Payload {
			return
		}
	}
	t.Fatalf("recorded fix not found in %+v", found)
}
