package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/redis/go-redis/v9"
)

const polarisAnswer = `# Polaris	#Q1234
#=Simbad (via url):    1
%@ 2731
%I.0 * alf UMi
%C.0 *
%J 037.95456067 +89.26410897 = 02:31:49.09 +89:15:50.7
%J.E [0.1 0.1 0] A 2007A&A...474..653V
%V v -16.42 [0.03] A 2002ApJS..141..503N
#====Done (2025-Jan-01,12:00:00z)====
`

const nothingFound = `# Zzyzx9	#Q1235
#! *** Nothing found *** ***
#====Done (2025-Jan-01,12:00:00z)====
`

func TestParseSesame(t *testing.T) {
	pos, err := parseSesame("Polaris", polarisAnswer)
	if err != nil {
		t.Fatal(err)
	}
	if pos != polaris {
		t.Fatalf("got %+v", pos)
	}

	_, err = parseSesame("Zzyzx9", nothingFound)
	if !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = parseSesame("broken", "%J abc +1\n")
	if err == nil || errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestSesameLookup(t *testing.T) {
	var queried []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queried = append(queried, r.URL.RawQuery)
		if strings.Contains(r.URL.RawQuery, "Polaris") {
			_, _ = w.Write([]byte(polarisAnswer))
			return
		}
		_, _ = w.Write([]byte(nothingFound))
	}))
	defer srv.Close()

	s := NewSesame(log, Configuration{Sesame: srv.URL, Timeout: 5})
	pos, err := s.Lookup(context.Background(), "Polaris")
	if err != nil {
		t.Fatal(err)
	}
	if pos != polaris {
		t.Fatalf("got %+v", pos)
	}

	if _, err := s.Lookup(context.Background(), "Cygnus X-1"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if queried[1] != "Cygnus%20X-1" {
		t.Fatalf("name not escaped: %q", queried[1])
	}
}

func TestSesameMirrorFallback(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(polarisAnswer))
	}))
	defer up.Close()

	s := NewSesame(log, Configuration{Sesame: down.URL + ", " + up.URL, Timeout: 5})
	if _, err := s.Lookup(context.Background(), "Polaris"); err != nil {
		t.Fatal(err)
	}

	s = NewSesame(log, Configuration{Sesame: down.URL, Timeout: 5})
	_, err := s.Lookup(context.Background(), "Polaris")
	if err == nil || errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestSesameLookupCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	s := NewSesame(log, Configuration{Sesame: srv.URL, Timeout: 30})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := s.Lookup(ctx, "Polaris"); err == nil {
		t.Fatal("expected error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("lookup ignored cancellation")
	}
}

func TestSesameWithoutMirrors(t *testing.T) {
	s := NewSesame(log, Configuration{Sesame: " , "})
	if _, err := s.Lookup(context.Background(), "Vega"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCachedLookupFallsThrough(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	inner := &stubLookup{pos: polaris}
	c := NewCachedLookup(log, client, inner, time.Hour)
	pos, err := c.Lookup(context.Background(), "Polaris")
	if err != nil {
		t.Fatal(err)
	}
	if pos != polaris || inner.calls != 1 {
		t.Fatalf("got %+v after %d calls", pos, inner.calls)
	}

	inner.err = app.ErrNotFound
	if _, err := c.Lookup(context.Background(), "Zzyzx9"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCacheEncoding(t *testing.T) {
	if got := cacheKey("  Polaris "); got != "astrotracker:sesame:polaris" {
		t.Fatalf("key %q", got)
	}
	pos, err := parseCached("37.9545606700 89.2641089700")
	if err != nil {
		t.Fatal(err)
	}
	if pos != polaris {
		t.Fatalf("got %+v", pos)
	}
	if _, err := parseCached("garbage"); err == nil {
		t.Fatal("expected error")
	}
}
