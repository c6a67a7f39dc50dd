package session

import (
	"encoding/json"
	"time"
)

// Collections of the document store.
const (
	CollectionInstances   = "sessionInstances"
	CollectionRecurrences = "sessionRecurrences"
)

// ClockLayout is the layout of session start & end times.
const ClockLayout = "15:04"

// Instance is one concrete, dated occurrence of a session.
type Instance struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	Title        string    `json:"title"`
	Date         time.Time `json:"date"` // UTC day
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	RecurrenceID string    `json:"recurrence_id,omitempty"` // empty for standalone sessions
}

func (inst Instance) IsRecurring() bool {
	return inst.RecurrenceID != ""
}

// Recurrence is the rule that produced a family of Instances.
// Member instances are found by querying on their RecurrenceID.
type Recurrence struct {
	ID         string
	CourseID   string
	Title      string
	AnchorDate time.Time // date of the conceptual first occurrence
	StartTime  string
	EndTime    string
	Frequency  Frequency
	SeriesEnd  *time.Time
}

type recurrenceJSON struct {
	ID         string        `json:"id"`
	CourseID   string        `json:"course_id"`
	Title      string        `json:"title"`
	AnchorDate time.Time     `json:"anchor_date"`
	StartTime  string        `json:"start_time"`
	EndTime    string        `json:"end_time"`
	Frequency  FrequencySpec `json:"frequency"`
	SeriesEnd  *time.Time    `json:"series_end,omitempty"`
}

func (rec Recurrence) MarshalJSON() ([]byte, error) {
	return json.Marshal(recurrenceJSON{
		ID:         rec.ID,
		CourseID:   rec.CourseID,
		Title:      rec.Title,
		AnchorDate: rec.AnchorDate,
		StartTime:  rec.StartTime,
		EndTime:    rec.EndTime,
		Frequency:  SpecOf(rec.Frequency),
		SeriesEnd:  rec.SeriesEnd,
	})
}

// Form holds the values of the session edit form: the instance fields plus the
// flattened fields of its recurrence.
type Form struct {
	Title     string        `json:"title" validate:"required,notblank"`
	Date      time.Time     `json:"date" validate:"required"`
	StartTime string        `json:"start_time" validate:"required,clock"`
	EndTime   string        `json:"end_time" validate:"required,clock"`
	Recurring bool          `json:"recurring"`
	Frequency FrequencySpec `json:"frequency"`
	SeriesEnd *time.Time    `json:"series_end,omitempty"`
}

// NewInstance contains information needed to create a standalone session.
type NewInstance struct {
	CourseID  string    `json:"course_id" validate:"required"`
	Title     string    `json:"title" validate:"required,notblank"`
	Date      time.Time `json:"date" validate:"required"`
	StartTime string    `json:"start_time" validate:"required,clock"`
	EndTime   string    `json:"end_time" validate:"required,clock"`
}

// NewRecurrence contains information needed to create a recurring session.
type NewRecurrence struct {
	CourseID   string        `json:"course_id" validate:"required"`
	Title      string        `json:"title" validate:"required,notblank"`
	AnchorDate time.Time     `json:"anchor_date" validate:"required"`
	StartTime  string        `json:"start_time" validate:"required,clock"`
	EndTime    string        `json:"end_time" validate:"required,clock"`
	Frequency  FrequencySpec `json:"frequency"`
	SeriesEnd  *time.Time    `json:"series_end,omitempty"`
}

// InstancePatch lists the instance fields to update; nil fields are left untouched.
type InstancePatch struct {
	Title     *string
	Date      *time.Time
	StartTime *string
	EndTime   *string
}

func (p InstancePatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.StartTime == nil && p.EndTime == nil
}

// Apply returns a copy of inst with the patch applied.
func (p InstancePatch) Apply(inst Instance) Instance {
	if p.Title != nil {
		inst.Title = *p.Title
	}
	if p.Date != nil {
		inst.Date = Day(*p.Date)
	}
	if p.StartTime != nil {
		inst.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		inst.EndTime = *p.EndTime
	}
	return inst
}

// InstanceFilter applies AND operation on its set fields.
type InstanceFilter struct {
	IDs          []string // id is one of
	CourseID     string
	RecurrenceID string
	DateFrom     time.Time // inclusive
	DateTo       time.Time // inclusive
}

// Day truncates t to its calendar day, in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

func sameDayPtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return SameDay(*a, *b)
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := Day(*t)
	return &d
}
