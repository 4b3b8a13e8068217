package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/francois-poidevin/astrotracker/internal/app/tools"
	"github.com/francois-poidevin/astrotracker/internal/observability"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultInterval separates the start of two ticks.
const DefaultInterval = 10 * time.Second

//Options - tracker tuning, zero values fall back to defaults
type Options struct {
	Interval time.Duration
	// Device builds the device sink tried at every session start. Nil means
	// display only.
	Device  func() app.Sinker
	Metrics *observability.TrackerCollector
	Now     func() time.Time
}

//Session - one tracking run, from start to closure
type Session struct {
	ID       string               `json:"id"`
	Target   app.TargetSpec       `json:"target"`
	Observer app.ObserverLocation `json:"observer"`
	Started  time.Time            `json:"started"`

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *Session) State() app.State {
	return app.State(s.state.Load())
}

func (s *Session) setState(st app.State) {
	s.state.Store(int32(st))
}

// Done is closed once the session released its sink and reached Idle.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

//Tracker - owns at most one tracking session and fans its events out
type Tracker struct {
	Log      *logrus.Logger
	resolver app.Resolver
	interval time.Duration
	device   func() app.Sinker
	metrics  *observability.TrackerCollector
	now      func() time.Time

	mu      sync.Mutex
	current *Session

	subMu   sync.RWMutex
	subs    map[int]chan app.Event
	nextSub int
}

func New(log *logrus.Logger, resolver app.Resolver, opts Options) *Tracker {
	t := &Tracker{
		Log:      log,
		resolver: resolver,
		interval: opts.Interval,
		device:   opts.Device,
		metrics:  opts.Metrics,
		now:      opts.Now,
		subs:     map[int]chan app.Event{},
	}
	if t.interval <= 0 {
		t.interval = DefaultInterval
	}
	if t.now == nil {
		t.now = time.Now
	}
	return t
}

// Start validates the request, stops the running session if any, and starts
// tracking target from obs on a dedicated goroutine.
func (t *Tracker) Start(target string, obs app.ObserverLocation) (*Session, error) {
	tgt, err := tools.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	if err := tools.ValidateObserver(obs); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil {
		t.Log.WithFields(logrus.Fields{
			"session": t.current.ID,
		}).Info("Replacing running session")
		if err := t.stopLocked(context.Background()); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:       uuid.NewString(),
		Target:   tgt,
		Observer: obs,
		Started:  t.now(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.setState(app.StateConnecting)
	t.current = s

	go t.run(ctx, s)
	return s, nil
}

// Stop cancels the running session and waits until it released its sink,
// or until ctx expires.
func (t *Tracker) Stop(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return app.ErrNoSession
	}
	return t.stopLocked(ctx)
}

func (t *Tracker) stopLocked(ctx context.Context) error {
	s := t.current
	s.cancel()
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	t.current = nil
	return nil
}

// Current returns the running session or nil.
func (t *Tracker) Current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *Tracker) IsActive() bool {
	return t.State() != app.StateIdle
}

func (t *Tracker) State() app.State {
	s := t.Current()
	if s == nil {
		return app.StateIdle
	}
	return s.State()
}

// Subscribe returns a buffered stream of events of every session. The
// returned function unsubscribes and closes the stream.
func (t *Tracker) Subscribe(buffer int) (<-chan app.Event, func()) {
	ch := make(chan app.Event, buffer)

	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subs, id)
			close(ch)
			t.subMu.Unlock()
		})
	}
}

func (t *Tracker) emit(s *Session, ev app.Event) {
	ev.Session = s.ID
	ev.Target = s.Target.String()
	if ev.Time.IsZero() {
		ev.Time = t.now()
	}

	t.subMu.RLock()
	defer t.subMu.RUnlock()
	for id, ch := range t.subs {
		select {
		case ch <- ev:
		default:
			t.metrics.EventDropped()
			t.Log.WithFields(logrus.Fields{
				"subscriber": id,
				"kind":       ev.Kind,
				"line":       ev.Line,
			}).Warn("Subscriber buffer full, event dropped")
		}
	}
}
