package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/francois-poidevin/astrotracker/config"
	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/francois-poidevin/astrotracker/internal/app/catalog"
	"github.com/francois-poidevin/astrotracker/internal/app/resolver"
	"github.com/francois-poidevin/astrotracker/internal/app/service"
	pgSinker "github.com/francois-poidevin/astrotracker/internal/app/sinkers/db"
	fileSinker "github.com/francois-poidevin/astrotracker/internal/app/sinkers/file"
	serialSinker "github.com/francois-poidevin/astrotracker/internal/app/sinkers/serial"
	"github.com/francois-poidevin/astrotracker/internal/app/tools"
	"github.com/francois-poidevin/astrotracker/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const stopTimeout = 5 * time.Second

//Runtime - everything a tracking process needs, wired from the configuration
type Runtime struct {
	Tracker *service.Tracker
	Catalog *catalog.Catalog
	Metrics *observability.TrackerCollector
	// History is nil unless the DB recorder is configured.
	History *service.History

	closers []func()
}

// Build wires the resolver, the tracker, the catalog and the configured
// recorder. reg may be nil when no metrics are exposed.
func Build(ctx context.Context, log *logrus.Logger, conf config.Configuration, reg prometheus.Registerer) (*Runtime, error) {
	at := conf.Astrotracker
	rt := &Runtime{}

	var lookup resolver.NameLookup = resolver.NewSesame(log, at.Resolver)
	if at.Cache.Addr != "" {
		client, errCache := resolver.ConnectCache(ctx, at.Cache)
		if errCache != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"addr":  at.Cache.Addr,
				"Error": errCache,
			}).Warn("Lookup cache unavailable, querying Sesame directly")
		} else {
			lookup = resolver.NewCachedLookup(log, client, lookup, time.Duration(at.Cache.TTL)*time.Hour)
			rt.closers = append(rt.closers, func() { _ = client.Close() })
		}
	}

	if reg != nil {
		metrics, errMetrics := observability.NewTrackerCollector(reg)
		if errMetrics != nil {
			return nil, errMetrics
		}
		rt.Metrics = metrics
	}

	opts := service.Options{
		Interval: time.Duration(at.Tick) * time.Second,
		Metrics:  rt.Metrics,
	}
	if at.Serial.Enabled {
		opts.Device = func() app.Sinker {
			return serialSinker.New(log, at.Serial, nil)
		}
	}
	rt.Tracker = service.New(log, resolver.New(log, lookup), opts)

	rt.Catalog = catalog.New(catalog.Seed...)
	if at.Catalog.File != "" {
		n, errCatalog := rt.Catalog.LoadFile(at.Catalog.File)
		if errCatalog != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"file":  at.Catalog.File,
				"Error": errCatalog,
			}).Warn("Unable to load catalog file, using built-in names")
		} else {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"file":  at.Catalog.File,
				"names": n,
			}).Info("Catalog loaded")
		}
	}

	if err := rt.attachRecorder(ctx, log, conf); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) attachRecorder(ctx context.Context, log *logrus.Logger, conf config.Configuration) error {
	at := conf.Astrotracker

	var rec app.Recorder
	switch at.Recorder {
	case "", "NONE":
		return nil
	case "FILE":
		log.WithContext(ctx).Info("Initiate File Recorder")
		rec = fileSinker.New(log, at.File)
	case "DB":
		log.WithContext(ctx).Info("Initiate DB Recorder")
		rec = pgSinker.New(log, at.Postgres)

		conn, err := pgSinker.Open(ctx, log, at.Postgres)
		if err != nil {
			return err
		}
		rt.History = service.NewHistory(log, conn)
		rt.closers = append(rt.closers, func() { _ = conn.Close() })
	default:
		return errors.New("Wrong recorder specified")
	}

	detach, err := service.Attach(ctx, log, rt.Tracker, rec)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, detach)
	return nil
}

// Close stops the running session and releases recorders and connections.
func (rt *Runtime) Close() {
	if rt.Tracker != nil && rt.Tracker.IsActive() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		_ = rt.Tracker.Stop(ctx)
		cancel()
	}
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

//Execute - track body from (lat, lon) until ctx ends or a signal arrives,
// printing every session line to out
func Execute(ctx context.Context,
	log *logrus.Logger,
	conf config.Configuration,
	body, lat, lon string,
	out io.Writer) error {

	target, errTarget := tools.ParseTarget(body)
	if errTarget != nil {
		return errTarget
	}
	obs, errObs := tools.ParseObserver(lat, lon)
	if errObs != nil {
		return errObs
	}

	log.WithContext(ctx).WithFields(logrus.Fields{
		"target":        target.String(),
		"lat":           obs.Lat,
		"lon":           obs.Lon,
		"tick (sec)":    conf.Astrotracker.Tick,
		"serialEnabled": conf.Astrotracker.Serial.Enabled,
		"serialPath":    conf.Astrotracker.Serial.Path,
		"recorder":      conf.Astrotracker.Recorder,
		"cache":         conf.Astrotracker.Cache.Addr,
	}).Info("START with Configuration params: ")

	rt, errBuild := Build(ctx, log, conf, nil)
	if errBuild != nil {
		return errBuild
	}
	defer rt.Close()

	sigCtx, cancel := sigCatch(ctx, log)
	defer cancel()

	events, unsubscribe := rt.Tracker.Subscribe(64)
	defer unsubscribe()

	fmt.Fprintf(out, "--- Starting Headless Mode: Tracking %s ---\n", target.String())
	fmt.Fprintln(out, "--- Press CTRL+C to stop. ---")

	if _, err := rt.Tracker.Start(target.String(), obs); err != nil {
		return err
	}

	present(sigCtx, events, out)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := rt.Tracker.Stop(stopCtx); err != nil && !errors.Is(err, app.ErrNoSession) {
		return err
	}
	drain(events, out)
	fmt.Fprintln(out, "--- Tracking stopped by user. ---")
	return nil
}

// present prints the operator line of every event until ctx ends.
func present(ctx context.Context, events <-chan app.Event, out io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintln(out, ev.Display())
		}
	}
}

// drain prints the events already buffered, the closing line included.
func drain(events <-chan app.Event, out io.Writer) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintln(out, ev.Display())
		default:
			return
		}
	}
}

// sigCatch returns a context cancelled on the first termination signal.
func sigCatch(ctx context.Context, log *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		select {
		case s := <-sigc:
			log.WithContext(ctx).Info("Signal: " + s.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigc)
		cancel()
	}
}
