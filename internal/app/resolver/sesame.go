package resolver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

//Sesame - client of the CDS Sesame name resolver
type Sesame struct {
	Log     *logrus.Logger
	mirrors []string
	client  *resty.Client
}

func NewSesame(log *logrus.Logger, conf Configuration) *Sesame {
	mirrors := []string{}
	for _, m := range strings.Split(conf.Sesame, ",") {
		if m = strings.TrimSpace(m); m != "" {
			mirrors = append(mirrors, m)
		}
	}
	timeout := time.Duration(conf.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sesame{
		Log:     log,
		mirrors: mirrors,
		client:  resty.New().SetTimeout(timeout),
	}
}

// Lookup queries the mirrors in order; an answer without a position means the
// name is unknown and is not retried on the next mirror.
func (s *Sesame) Lookup(ctx context.Context, name string) (SkyPosition, error) {
	if len(s.mirrors) == 0 {
		return SkyPosition{}, errors.New("no Sesame mirror configured")
	}

	var lastErr error
	for _, mirror := range s.mirrors {
		resp, err := s.client.R().SetContext(ctx).Get(mirror + "?" + url.PathEscape(name))
		if err != nil {
			if ctx.Err() != nil {
				return SkyPosition{}, ctx.Err()
			}
			lastErr = fmt.Errorf("sesame unreachable: %w", err)
			s.Log.WithContext(ctx).WithFields(logrus.Fields{
				"mirror": mirror,
				"Error":  err,
			}).Warn("Name lookup failed, trying next mirror")
			continue
		}
		if resp.StatusCode() != http.StatusOK {
			lastErr = fmt.Errorf("sesame answered HTTP %d", resp.StatusCode())
			s.Log.WithContext(ctx).WithFields(logrus.Fields{
				"mirror": mirror,
				"status": resp.StatusCode(),
			}).Warn("Name lookup failed, trying next mirror")
			continue
		}
		return parseSesame(name, resp.String())
	}
	return SkyPosition{}, lastErr
}

// parseSesame reads the "%J <ra> <dec>" line of a Sesame -oI answer.
func parseSesame(name, body string) (SkyPosition, error) {
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "%J ") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "%J "))
		if len(fields) < 2 {
			return SkyPosition{}, fmt.Errorf("malformed sesame position %q", line)
		}
		ra, errRA := strconv.ParseFloat(fields[0], 64)
		if errRA != nil {
			return SkyPosition{}, fmt.Errorf("malformed sesame right ascension: %w", errRA)
		}
		dec, errDec := strconv.ParseFloat(fields[1], 64)
		if errDec != nil {
			return SkyPosition{}, fmt.Errorf("malformed sesame declination: %w", errDec)
		}
		return SkyPosition{RA: ra, Dec: dec}, nil
	}
	return SkyPosition{}, fmt.Errorf("%w: %q", app.ErrNotFound, name)
}
