package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/francois-poidevin/astrotracker/internal/app/sinkers/db"
	"github.com/sirupsen/logrus"
)

//FixRecord - one persisted fix
type FixRecord struct {
	Session   string    `json:"session"`
	Target    string    `json:"target"`
	TimeStamp time.Time `json:"timeStamp"`
	Azimuth   float64   `json:"azimuth"`
	Elevation float64   `json:"elevation"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Payload   string    `json:"payload"`
	Sent      bool      `json:"sent"`
	Error     string    `json:"error,omitempty"`
}

//History - search over fixes persisted by the DB recorder
type History struct {
	Log *logrus.Logger
	db  *sql.DB
}

func NewHistory(log *logrus.Logger, conn *sql.DB) *History {
	return &History{Log: log, db: conn}
}

// Search returns the fixes of target (every target when empty) recorded
// between from and to, oldest first.
func (s *History) Search(ctx context.Context, target string, fromTimeStamp, toTimeStamp time.Time) ([]FixRecord, error) {
	s.Log.WithContext(ctx).Info("Search service called")

	selectSQLstmt := "SELECT Session, Target, TimeStamp, Azimuth, Elevation, X, Y, Z, Payload, Sent, Error FROM " + db.Schemaname + "." + db.Tablename + " WHERE ($1 = '' OR lower(Target) = lower($1)) AND TimeStamp BETWEEN $2 AND $3 ORDER BY TimeStamp"

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"SQL": selectSQLstmt,
	}).Debug("Select statement")

	rows, errQuery := s.db.QueryContext(ctx, selectSQLstmt,
		target,
		fromTimeStamp,
		toTimeStamp,
	)
	if errQuery != nil {
		return nil, errQuery
	}
	defer rows.Close()

	result := make([]FixRecord, 0)
	for rows.Next() {
		var (
			rec     FixRecord
			payload sql.NullString
			errMsg  sql.NullString
		)
		if errScan := rows.Scan(&rec.Session, &rec.Target, &rec.TimeStamp, &rec.Azimuth, &rec.Elevation, &rec.X, &rec.Y, &rec.Z, &payload, &rec.Sent, &errMsg); errScan != nil {
			return nil, errScan
		}
		rec.Payload = payload.String
		rec.Error = errMsg.String
		result = append(result, rec)
	}

	if errRow := rows.Err(); errRow != nil {
		return nil, errRow
	}
	return result, nil
}
