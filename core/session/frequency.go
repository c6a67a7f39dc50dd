package session

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core"
)

type FrequencyKind string

const (
	KindDaily    FrequencyKind = "daily"
	KindWeekly   FrequencyKind = "weekly"
	KindMonthly  FrequencyKind = "monthly"
	KindAnnually FrequencyKind = "annually"
)

// Frequency is the repetition mode of a Recurrence.
// It is one of Daily, Weekly, Monthly or Annually.
type Frequency interface {
	Kind() FrequencyKind
	Interval() int
}

type (
	Daily struct {
		Every int
	}

	Weekly struct {
		Every int
		Days  []time.Weekday
	}

	Monthly struct {
		Every      int
		DayOfMonth int
	}

	Annually struct {
		Every      int
		Months     []time.Month
		DayOfMonth int
	}
)

func (f Daily) Kind() FrequencyKind    { return KindDaily }
func (f Daily) Interval() int          { return f.Every }
func (f Weekly) Kind() FrequencyKind   { return KindWeekly }
func (f Weekly) Interval() int         { return f.Every }
func (f Monthly) Kind() FrequencyKind  { return KindMonthly }
func (f Monthly) Interval() int        { return f.Every }
func (f Annually) Kind() FrequencyKind { return KindAnnually }
func (f Annually) Interval() int       { return f.Every }

// FrequencySpec is the flat shape of a Frequency, as found in forms and storage.
// Only the parameters of Kind are meaningful.
type FrequencySpec struct {
	Kind       FrequencyKind  `json:"kind"`
	Interval   int            `json:"interval"`
	Weekdays   []time.Weekday `json:"weekdays,omitempty"`
	Months     []time.Month   `json:"months,omitempty"`
	DayOfMonth int            `json:"day_of_month,omitempty"`
}

// SpecOf flattens f. A nil Frequency gives an empty spec.
func SpecOf(f Frequency) FrequencySpec {
	switch f := f.(type) {
	case Daily:
		return FrequencySpec{Kind: KindDaily, Interval: f.Every}
	case Weekly:
		return FrequencySpec{Kind: KindWeekly, Interval: f.Every, Weekdays: weekdaySet(f.Days)}
	case Monthly:
		return FrequencySpec{Kind: KindMonthly, Interval: f.Every, DayOfMonth: f.DayOfMonth}
	case Annually:
		return FrequencySpec{Kind: KindAnnually, Interval: f.Every, Months: monthSet(f.Months), DayOfMonth: f.DayOfMonth}
	}
	return FrequencySpec{}
}

// Frequency converts s into its Frequency, checking the parameters of its kind.
func (s FrequencySpec) Frequency() (Frequency, error) {
	fieldErr := func(field, msg string) error {
		return core.NewValidationError(nil, core.FieldError{Field: "frequency." + field, Error: msg})
	}

	if s.Interval < 1 {
		return nil, fieldErr("interval", "interval must be at least 1")
	}
	validDay := s.DayOfMonth >= 1 && s.DayOfMonth <= 31

	switch s.Kind {
	case KindDaily:
		return Daily{Every: s.Interval}, nil
	case KindWeekly:
		days := weekdaySet(s.Weekdays)
		if len(days) == 0 {
			return nil, fieldErr("weekdays", "select at least one weekday")
		}
		for _, d := range days {
			if d < time.Sunday || d > time.Saturday {
				return nil, fieldErr("weekdays", fmt.Sprintf("invalid weekday %d", d))
			}
		}
		return Weekly{Every: s.Interval, Days: days}, nil
	case KindMonthly:
		if !validDay {
			return nil, fieldErr("day_of_month", "day of month must be between 1 and 31")
		}
		return Monthly{Every: s.Interval, DayOfMonth: s.DayOfMonth}, nil
	case KindAnnually:
		months := monthSet(s.Months)
		if len(months) == 0 {
			return nil, fieldErr("months", "select at least one month")
		}
		for _, m := range months {
			if m < time.January || m > time.December {
				return nil, fieldErr("months", fmt.Sprintf("invalid month %d", m))
			}
		}
		if !validDay {
			return nil, fieldErr("day_of_month", "day of month must be between 1 and 31")
		}
		return Annually{Every: s.Interval, Months: months, DayOfMonth: s.DayOfMonth}, nil
	}
	return nil, fieldErr("kind", fmt.Sprintf("unknown frequency %q", s.Kind))
}

// normalized drops the parameters that do not belong to Kind and turns the
// weekday & month lists into sorted sets.
func (s FrequencySpec) normalized() FrequencySpec {
	n := FrequencySpec{Kind: s.Kind, Interval: s.Interval}
	switch s.Kind {
	case KindWeekly:
		n.Weekdays = weekdaySet(s.Weekdays)
	case KindMonthly:
		n.DayOfMonth = s.DayOfMonth
	case KindAnnually:
		n.Months = monthSet(s.Months)
		n.DayOfMonth = s.DayOfMonth
	}
	return n
}

// Equal compares two specs on their active mode, sets ignoring order.
func (s FrequencySpec) Equal(o FrequencySpec) bool {
	a, b := s.normalized(), o.normalized()
	if a.Kind != b.Kind || a.Interval != b.Interval || a.DayOfMonth != b.DayOfMonth {
		return false
	}
	if len(a.Weekdays) != len(b.Weekdays) || len(a.Months) != len(b.Months) {
		return false
	}
	for i := range a.Weekdays {
		if a.Weekdays[i] != b.Weekdays[i] {
			return false
		}
	}
	for i := range a.Months {
		if a.Months[i] != b.Months[i] {
			return false
		}
	}
	return true
}

// Value stores s as a JSON document.
func (s FrequencySpec) Value() (driver.Value, error) {
	b, err := json.Marshal(s.normalized())
	if err != nil {
		return nil, errors.Wrap(err, "marshalling frequency")
	}
	return string(b), nil
}

func (s *FrequencySpec) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = FrequencySpec{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.Errorf("cannot scan %T into FrequencySpec", src)
	}
	return errors.Wrap(json.Unmarshal(data, s), "unmarshalling frequency")
}

func weekdaySet(days []time.Weekday) []time.Weekday {
	if len(days) == 0 {
		return nil
	}
	seen := make(map[time.Weekday]bool, len(days))
	set := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			set = append(set, d)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

func monthSet(months []time.Month) []time.Month {
	if len(months) == 0 {
		return nil
	}
	seen := make(map[time.Month]bool, len(months))
	set := make([]time.Month, 0, len(months))
	for _, m := range months {
		if !seen[m] {
			seen[m] = true
			set = append(set, m)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}
