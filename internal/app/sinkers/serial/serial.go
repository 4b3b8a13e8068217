package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
	bugst "go.bug.st/serial"
)

//OpenFunc - opens the byte transport behind the device sink
type OpenFunc func(path string, baud int, timeout time.Duration) (io.WriteCloser, error)

// OpenPort opens a serial port in 8N1 mode.
func OpenPort(path string, baud int, timeout time.Duration) (io.WriteCloser, error) {
	port, err := bugst.Open(path, &bugst.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		if err := port.SetReadTimeout(timeout); err != nil {
			_ = port.Close()
			return nil, err
		}
	}
	return port, nil
}

type SerialSinker struct {
	Log  *logrus.Logger
	conf Configuration
	open OpenFunc

	mu   sync.Mutex
	port io.WriteCloser
}

func New(log *logrus.Logger, conf Configuration, open OpenFunc) *SerialSinker {
	if open == nil {
		open = OpenPort
	}
	return &SerialSinker{Log: log, conf: conf, open: open}
}

func (s *SerialSinker) Init(ctx context.Context) error {
	if !s.conf.Enabled {
		return &app.TransportError{Op: "open", Err: errors.New("serial device disabled")}
	}
	port, err := s.open(s.conf.Path, s.conf.Baud, time.Duration(s.conf.Timeout)*time.Millisecond)
	if err != nil {
		return &app.TransportError{Op: "open", Err: fmt.Errorf("%s: %w", s.conf.Path, err)}
	}

	s.mu.Lock()
	s.port = port
	s.mu.Unlock()

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"path": s.conf.Path,
		"baud": s.conf.Baud,
	}).Info("Serial device opened")
	return nil
}

func (s *SerialSinker) Sink(ctx context.Context, t time.Time, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return &app.TransportError{Op: "write", Err: errors.New("device is not open")}
	}
	n, err := s.port.Write(payload)
	if err != nil {
		return &app.TransportError{Op: "write", Err: err}
	}
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"length": fmt.Sprintf("wrote %d bytes", n),
	}).Debug("Wrote")
	return nil
}

// Close releases the port; later calls are no-ops.
func (s *SerialSinker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

func (s *SerialSinker) Device() bool {
	return true
}

func (s *SerialSinker) Name() string {
	return s.conf.Path
}
