package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
)

//FileRecorder - appends every session event to a log file
type FileRecorder struct {
	Log  *logrus.Logger
	conf Configuration

	mu sync.Mutex
	f  *os.File
}

func New(log *logrus.Logger, conf Configuration) *FileRecorder {
	return &FileRecorder{Log: log, conf: conf}
}

func (s *FileRecorder) Init(ctx context.Context) error {
	dir := filepath.Dir(s.conf.Output)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err := os.MkdirAll(dir, os.ModePerm)
		if err != nil {
			s.Log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": err,
			}).Error("Unable to create folder '" + dir + "'")
			return err
		}
	}

	f, err := os.OpenFile(s.conf.Output,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		s.Log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Unable to Open file")
		return err
	}

	s.mu.Lock()
	s.f = f
	s.mu.Unlock()
	return nil
}

func (s *FileRecorder) Record(ctx context.Context, ev app.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return errors.New("No file for storing events")
	}

	w := bufio.NewWriter(s.f)
	n, errWS := w.WriteString(fmt.Sprintf("%s [%s] %s %s\n",
		ev.Time.UTC().Format("2006-01-02T15:04:05Z07:00"), ev.Session, ev.Kind, ev.Display()))
	if errWS != nil {
		return errWS
	}
	if errFlush := w.Flush(); errFlush != nil {
		return errFlush
	}
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"length": fmt.Sprintf("wrote %d bytes", n),
	}).Debug("Wrote")
	return nil
}

func (s *FileRecorder) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
