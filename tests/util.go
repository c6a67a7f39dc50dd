package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
	"github.com/trezcool/masomo-calendar/storage/database"
)

// Conf returns the configuration used by tests: debug off, in-memory sqlite.
func Conf() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Masomo",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			DisableReqLogs:     true,
			JWTExpirationDelta: time.Hour,
		},
		Database: core.DatabaseConfig{
			Engine: database.EngineSQLite,
			Name:   ":memory:",
		},
		Session: core.SessionConfig{
			ExpansionHorizon: 365 * 24 * time.Hour,
			MaxOccurrences:   500,
		},
	}
}

// PrepareDB opens a fresh, migrated database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := Conf()

	goose.SetLogger(goose.NopLogger())

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return sqlx.NewDb(db, database.DriverName(conf.Database.Engine))
}

// CreateSeries creates a daily recurrence of n sessions starting on start.
func CreateSeries(t *testing.T, ctx context.Context, svc *session.Service, courseID, title string, start time.Time, n int) (session.Recurrence, []session.Instance) {
	t.Helper()
	end := start.AddDate(0, 0, n-1)
	rec, instances, err := svc.CreateRecurrence(ctx, session.NewRecurrence{
		CourseID:   courseID,
		Title:      title,
		AnchorDate: start,
		StartTime:  "08:00",
		EndTime:    "10:00",
		Frequency:  session.FrequencySpec{Kind: session.KindDaily, Interval: 1},
		SeriesEnd:  &end,
	})
	if err != nil {
		t.Fatalf("CreateSeries() failed: %v", err)
	}
	return rec, instances
}
