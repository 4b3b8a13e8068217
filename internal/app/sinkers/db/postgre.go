package db

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/francois-poidevin/astrotracker/internal/app"
	"github.com/sirupsen/logrus"
)

const (
	Schemaname = "astrotracker"
	Tablename  = "fix"
)

// Open connects to Postgres and checks the connection.
func Open(ctx context.Context, log *logrus.Logger, conf Configuration) (*sql.DB, error) {
	log.WithContext(ctx).WithFields(logrus.Fields{
		"host": conf.Host,
		"port": conf.Port,
		"db":   conf.Dbname,
	}).Info("Init DB ...")

	db, err := sql.Open("postgres", conf.DSN())
	if err != nil {
		return nil, err
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.WithContext(ctx).Info("Successfully connected : " + conf.Host)
	return db, nil
}

//PostGreRecorder - persists every fix of a session
type PostGreRecorder struct {
	Log  *logrus.Logger
	conf Configuration
	db   *sql.DB
}

func New(log *logrus.Logger, conf Configuration) *PostGreRecorder {
	return &PostGreRecorder{Log: log, conf: conf}
}

func (s *PostGreRecorder) Init(ctx context.Context) error {
	db, err := Open(ctx, s.Log, s.conf)
	if err != nil {
		return err
	}
	s.db = db

	createSchemaSQL := "CREATE SCHEMA IF NOT EXISTS " + Schemaname
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"SQL": createSchemaSQL,
	}).Info("create schema")
	if _, err = s.db.ExecContext(ctx, createSchemaSQL); err != nil {
		return err
	}

	createTableSQL := "CREATE TABLE IF NOT EXISTS " + Schemaname + "." + Tablename + " (Session varchar(40) NOT NULL, Target varchar(80) NOT NULL, TimeStamp timestamptz NOT NULL, Azimuth double precision, Elevation double precision, X double precision, Y double precision, Z double precision, Payload varchar(80), Sent boolean, Error text)"
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"SQL": createTableSQL,
	}).Info("create table")
	if _, err = s.db.ExecContext(ctx, createTableSQL); err != nil {
		return err
	}
	return nil
}

// Record inserts fix and transport events; other kinds are ignored.
func (s *PostGreRecorder) Record(ctx context.Context, ev app.Event) error {
	if ev.Fix == nil || (ev.Kind != app.EventFix && ev.Kind != app.EventTransport) {
		return nil
	}
	if s.db == nil {
		return errors.New("No DB connection for storing fixes")
	}

	insertSQL := "INSERT INTO " + Schemaname + "." + Tablename + " VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"
	result, err := s.db.ExecContext(ctx, insertSQL,
		ev.Session,
		ev.Target,
		ev.Time,
		ev.Fix.Azimuth,
		ev.Fix.Elevation,
		ev.Fix.Vector[0],
		ev.Fix.Vector[1],
		ev.Fix.Vector[2],
		ev.Payload,
		ev.Sent,
		ev.Err,
	)
	if err != nil {
		return err
	}

	nb, _ := result.RowsAffected()
	s.Log.WithContext(ctx).WithFields(logrus.Fields{"Rows Affected": nb}).Debug("Insert in DB ...")
	return nil
}

func (s *PostGreRecorder) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
