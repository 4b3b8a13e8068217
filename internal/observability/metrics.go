package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TrackerCollector bundles Prometheus metrics for the tracking loop.
// A nil *TrackerCollector is valid and records nothing.
type TrackerCollector struct {
	gatherer prometheus.Gatherer

	Ticks           *prometheus.CounterVec
	ResolveDuration prometheus.Histogram
	SessionActive   prometheus.Gauge
	DeviceConnected prometheus.Gauge
	DroppedEvents   prometheus.Counter
}

// NewTrackerCollector registers tracker metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewTrackerCollector(reg prometheus.Registerer) (*TrackerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astrotracker_ticks_total",
		Help: "Tracking loop ticks, labeled by outcome (fix, error, transport).",
	}, []string{"outcome"}), "astrotracker_ticks_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "astrotracker_resolve_duration_seconds",
		Help:    "Time spent resolving a target into a horizontal fix.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}), "astrotracker_resolve_duration_seconds")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astrotracker_session_active",
		Help: "1 while a tracking session is running.",
	}), "astrotracker_session_active")
	if err != nil {
		return nil, err
	}

	device, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astrotracker_device_connected",
		Help: "1 while the session writes to the serial device, 0 on the display sink.",
	}), "astrotracker_device_connected")
	if err != nil {
		return nil, err
	}

	dropped, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astrotracker_dropped_events_total",
		Help: "Events not delivered to a subscriber whose buffer was full.",
	}), "astrotracker_dropped_events_total")
	if err != nil {
		return nil, err
	}

	return &TrackerCollector{
		gatherer:        gatherer,
		Ticks:           ticks,
		ResolveDuration: duration,
		SessionActive:   active,
		DeviceConnected: device,
		DroppedEvents:   dropped,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *TrackerCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *TrackerCollector) ObserveTick(outcome string, resolve time.Duration) {
	if c == nil {
		return
	}
	c.Ticks.WithLabelValues(outcome).Inc()
	c.ResolveDuration.Observe(resolve.Seconds())
}

func (c *TrackerCollector) SetSession(active, device bool) {
	if c == nil {
		return
	}
	c.SessionActive.Set(boolToFloat(active))
	c.DeviceConnected.Set(boolToFloat(device))
}

func (c *TrackerCollector) EventDropped() {
	if c == nil {
		return
	}
	c.DroppedEvents.Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
