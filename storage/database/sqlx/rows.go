package sqlxrepos

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-calendar/core/session"
)

// dateLayout is the storage format of calendar days.
const dateLayout = "2006-01-02"

type (
	instanceRow struct {
		ID           string      `db:"id"`
		CourseID     string      `db:"course_id"`
		Title        string      `db:"title"`
		Date         string      `db:"date"`
		StartTime    string      `db:"start_time"`
		EndTime      string      `db:"end_time"`
		RecurrenceID null.String `db:"recurrence_id"`
	}

	recurrenceRow struct {
		ID         string                `db:"id"`
		CourseID   string                `db:"course_id"`
		Title      string                `db:"title"`
		AnchorDate string                `db:"anchor_date"`
		StartTime  string                `db:"start_time"`
		EndTime    string                `db:"end_time"`
		Frequency  session.FrequencySpec `db:"frequency"`
		SeriesEnd  null.String           `db:"series_end"`
	}
)

func formatDate(t time.Time) string {
	return session.Day(t).Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	return t, errors.Wrapf(err, "parsing date %q", s)
}

func newInstanceRow(inst session.Instance) instanceRow {
	return instanceRow{
		ID:           inst.ID,
		CourseID:     inst.CourseID,
		Title:        inst.Title,
		Date:         formatDate(inst.Date),
		StartTime:    inst.StartTime,
		EndTime:      inst.EndTime,
		RecurrenceID: null.NewString(inst.RecurrenceID, inst.RecurrenceID != ""),
	}
}

func (row instanceRow) instance() (session.Instance, error) {
	date, err := parseDate(row.Date)
	if err != nil {
		return session.Instance{}, err
	}
	return session.Instance{
		ID:           row.ID,
		CourseID:     row.CourseID,
		Title:        row.Title,
		Date:         date,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		RecurrenceID: row.RecurrenceID.String,
	}, nil
}

func newRecurrenceRow(rec session.Recurrence) recurrenceRow {
	row := recurrenceRow{
		ID:         rec.ID,
		CourseID:   rec.CourseID,
		Title:      rec.Title,
		AnchorDate: formatDate(rec.AnchorDate),
		StartTime:  rec.StartTime,
		EndTime:    rec.EndTime,
		Frequency:  session.SpecOf(rec.Frequency),
	}
	if rec.SeriesEnd != nil {
		row.SeriesEnd = null.StringFrom(formatDate(*rec.SeriesEnd))
	}
	return row
}

func (row recurrenceRow) recurrence() (session.Recurrence, error) {
	anchor, err := parseDate(row.AnchorDate)
	if err != nil {
		return session.Recurrence{}, err
	}
	freq, err := row.Frequency.Frequency()
	if err != nil {
		return session.Recurrence{}, errors.Wrapf(err, "recurrence %s", row.ID)
	}
	rec := session.Recurrence{
		ID:         row.ID,
		CourseID:   row.CourseID,
		Title:      row.Title,
		AnchorDate: anchor,
		StartTime:  row.StartTime,
		EndTime:    row.EndTime,
		Frequency:  freq,
	}
	if row.SeriesEnd.Valid {
		end, err := parseDate(row.SeriesEnd.String)
		if err != nil {
			return session.Recurrence{}, err
		}
		rec.SeriesEnd = &end
	}
	return rec, nil
}
