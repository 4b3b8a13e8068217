package cmd

/*
Copyright © 2019 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/francois-poidevin/astrotracker/config"
	"github.com/francois-poidevin/astrotracker/internal"
	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/francois-poidevin/astrotracker/internal/app/service"
	"github.com/francois-poidevin/astrotracker/internal/app/tools"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	timeLayout     = "2006-01-02T15:04:05"
	defaultSuggest = 10
)

// startHttpCmd represents the startHttp command
// see https://dev.to/moficodes/build-your-first-rest-api-with-go-2gcj
var startHttpCmd = &cobra.Command{
	Use:   "startHttp",
	Short: "Allow to start REST API service around tracking sessions",
	Long:  `The HTTP Rest API service start with config parameters. Several endpoints are available `,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Initialize config
		initConfig()

		rt, errBuild := internal.Build(ctx, log, *conf, prometheus.NewRegistry())
		if errBuild != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errBuild,
			}).Fatal("Unable to build tracker")
		}
		defer rt.Close()

		log.WithContext(ctx).WithFields(logrus.Fields{
			"listen": conf.Astrotracker.Http.Listen,
		}).Info("REST API listening")

		//Start http server here
		srv := &http.Server{
			Addr:              conf.Astrotracker.Http.Listen,
			Handler:           newServer(log, rt, *conf).routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		if err := srv.ListenAndServe(); err != nil {
			log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": err,
			}).Error("REST API stopped")
		}
	},
}

func init() {
	startHttpCmd.Flags().StringVar(&cfgFile, "config", "", "config file")
}

type server struct {
	log      *logrus.Logger
	rt       *internal.Runtime
	conf     config.Configuration
	upgrader websocket.Upgrader
}

func newServer(log *logrus.Logger, rt *internal.Runtime, conf config.Configuration) *server {
	return &server{
		log:  log,
		rt:   rt,
		conf: conf,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/start", s.startService).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/stop", s.stopService).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/status", s.statusService).Methods(http.MethodGet)
	api.HandleFunc("/events", s.eventsService).Methods(http.MethodGet)
	api.HandleFunc("/catalog", s.catalogService).Methods(http.MethodGet)
	api.HandleFunc("/catalog/reload", s.catalogReloadService).Methods(http.MethodPost)
	api.HandleFunc("/history", s.historyService).Methods(http.MethodGet)
	r.Handle("/metrics", s.rt.Metrics.Handler())

	return r
}

type message struct {
	Message string `json:"message"`
}

type status struct {
	Active  bool    `json:"active"`
	State   string  `json:"state"`
	Session string  `json:"session,omitempty"`
	Target  string  `json:"target,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type historyResponse struct {
	Target string              `json:"target"`
	From   time.Time           `json:"from"`
	To     time.Time           `json:"to"`
	NbFix  int                 `json:"nbFix"`
	Data   []service.FixRecord `json:"data"`
}

func (s *server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithFields(logrus.Fields{
			"Error": err,
		}).Error("Unable to write response")
	}
}

//Start tracking service
// params : body, lat, lon
func (s *server) startService(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	obs, errObs := tools.ParseObserver(query.Get("lat"), query.Get("lon"))
	if errObs != nil {
		s.writeJSON(w, http.StatusBadRequest, message{Message: errObs.Error()})
		return
	}

	session, errStart := s.rt.Tracker.Start(query.Get("body"), obs)
	if errStart != nil {
		var ve *app.ValidationError
		if errors.As(errStart, &ve) {
			s.writeJSON(w, http.StatusBadRequest, message{Message: errStart.Error()})
			return
		}
		s.writeJSON(w, http.StatusInternalServerError, message{Message: errStart.Error()})
		return
	}

	s.writeJSON(w, http.StatusAccepted, status{
		Active:  true,
		State:   session.State().String(),
		Session: session.ID,
		Target:  session.Target.String(),
		Lat:     obs.Lat,
		Lon:     obs.Lon,
	})
}

//Stop tracking service
func (s *server) stopService(w http.ResponseWriter, r *http.Request) {
	err := s.rt.Tracker.Stop(r.Context())
	switch {
	case errors.Is(err, app.ErrNoSession):
		s.writeJSON(w, http.StatusConflict, message{Message: "tracking service is not processing currently"})
	case err != nil:
		s.writeJSON(w, http.StatusInternalServerError, message{Message: err.Error()})
	default:
		s.writeJSON(w, http.StatusOK, message{Message: "tracking stopped"})
	}
}

func (s *server) statusService(w http.ResponseWriter, r *http.Request) {
	st := status{State: app.StateIdle.String()}
	if session := s.rt.Tracker.Current(); session != nil {
		st = status{
			Active:  session.State() != app.StateIdle,
			State:   session.State().String(),
			Session: session.ID,
			Target:  session.Target.String(),
			Lat:     session.Observer.Lat,
			Lon:     session.Observer.Lon,
		}
	}
	s.writeJSON(w, http.StatusOK, st)
}

// eventsService streams every session event as JSON over a websocket until
// the client goes away.
func (s *server) eventsService(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"Error": err,
		}).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := s.rt.Tracker.Subscribe(64)
	defer unsubscribe()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

//Suggest object names
// params : prefix, limit
func (s *server) catalogService(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultSuggest
	if l := query.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, message{Message: "need a number (" + err.Error() + ")"})
			return
		}
		limit = n
	}

	s.writeJSON(w, http.StatusOK, s.rt.Catalog.Suggest(query.Get("prefix"), limit))
}

func (s *server) catalogReloadService(w http.ResponseWriter, r *http.Request) {
	path := s.conf.Astrotracker.Catalog.File
	if path == "" {
		s.writeJSON(w, http.StatusConflict, message{Message: "no catalog file configured"})
		return
	}
	n, err := s.rt.Catalog.LoadFile(path)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, message{Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, message{Message: strconv.Itoa(n) + " names loaded"})
}

//Search on recorded fixes
// params : target, time windows (from, to)
// return : json
func (s *server) historyService(w http.ResponseWriter, r *http.Request) {
	if s.rt.History == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, message{Message: "history needs the DB recorder, please change config file"})
		return
	}

	query := r.URL.Query()
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if p := query.Get("fromTimeStamp"); p != "" {
		t, err := time.Parse(timeLayout, p)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, message{Message: "need a time with layout " + timeLayout + " - error: " + err.Error()})
			return
		}
		from = t
	}
	if p := query.Get("toTimeStamp"); p != "" {
		t, err := time.Parse(timeLayout, p)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, message{Message: "need a time with layout " + timeLayout + " - error: " + err.Error()})
			return
		}
		to = t
	}

	target := query.Get("target")
	data, err := s.rt.History.Search(r.Context(), target, from, to)
	if err != nil {
		s.log.WithContext(r.Context()).WithFields(logrus.Fields{
			"Error": err,
		}).Error("History search failed")
		s.writeJSON(w, http.StatusInternalServerError, message{Message: "internal server error (" + err.Error() + ")"})
		return
	}

	s.writeJSON(w, http.StatusOK, historyResponse{
		Target: target,
		From:   from,
		To:     to,
		NbFix:  len(data),
		Data:   data,
	})
}
