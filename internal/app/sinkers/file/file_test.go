package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
)

func TestFileRecorder(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard

	path := filepath.Join(t.TempDir(), "nested", "tracking.log")
	r := New(log, Configuration{Output: path})
	ctx := context.Background()

	if err := r.Record(ctx, app.Event{}); err == nil {
		t.Fatal("expected error before Init")
	}
	if err := r.Init(ctx); err != nil {
		t.Fatal(err)
	}

	ts := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	events := []app.Event{
		{Kind: app.EventFix, Session: "s1", Time: ts, Line: "Az/El: 1.00°, 2.00° | XYZ: (+0.999, +0.017, +0.035)"},
		{Kind: app.EventFix, Session: "s1", Time: ts, Payload: "<1.00,2.00,0.9992,0.0174,0.0349>", Sent: true},
		{Kind: app.EventError, Session: "s1", Time: ts, Line: "Error finding 'Zzyzx9': lookup: object not found"},
	}
	for _, ev := range events {
		if err := r.Record(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	if lines[0] != "2026-01-01T12:00:00Z [s1] fix Az/El: 1.00°, 2.00° | XYZ: (+0.999, +0.017, +0.035)" {
		t.Fatalf("line 0: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "Sent: <1.00,2.00,0.9992,0.0174,0.0349>") {
		t.Fatalf("line 1: %q", lines[1])
	}
	if !strings.Contains(lines[2], "error Error finding 'Zzyzx9'") {
		t.Fatalf("line 2: %q", lines[2])
	}
}

func TestFileRecorderReportsWriteFailure(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard

	path := filepath.Join(t.TempDir(), "tracking.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	readOnly, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	r := New(log, Configuration{Output: path})
	r.f = readOnly
	defer r.Close()

	ev := app.Event{Kind: app.EventStatus, Session: "s1", Time: time.Now(), Line: "Connected to /dev/ttyACM0"}
	if err := r.Record(context.Background(), ev); err == nil {
		t.Fatal("expected the failed write to be reported")
	}
}
