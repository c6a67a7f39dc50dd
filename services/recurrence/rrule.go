package recurrencesvc

import (
	"time"

	"github.com/pkg/errors"
	"github.com/teambition/rrule-go"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
)

var weekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// RRuleExpander expands recurrences with RFC 5545 rules.
// Open-ended recurrences are expanded up to Horizon after their anchor, and no
// recurrence yields more than MaxOccurrences dates.
type RRuleExpander struct {
	Horizon        time.Duration
	MaxOccurrences int
}

var _ session.Expander = RRuleExpander{} // interface compliance check

func NewRRuleExpander(conf *core.Config) RRuleExpander {
	return RRuleExpander{
		Horizon:        conf.Session.ExpansionHorizon,
		MaxOccurrences: conf.Session.MaxOccurrences,
	}
}

// Option builds the rule options of rec.
func Option(rec session.Recurrence) (rrule.ROption, error) {
	opt := rrule.ROption{
		Interval: rec.Frequency.Interval(),
		Dtstart:  session.Day(rec.AnchorDate),
	}
	if rec.SeriesEnd != nil {
		opt.Until = session.Day(*rec.SeriesEnd)
	}

	switch f := rec.Frequency.(type) {
	case session.Daily:
		opt.Freq = rrule.DAILY
	case session.Weekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range f.Days {
			opt.Byweekday = append(opt.Byweekday, weekdays[d])
		}
	case session.Monthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{f.DayOfMonth}
	case session.Annually:
		opt.Freq = rrule.YEARLY
		for _, m := range f.Months {
			opt.Bymonth = append(opt.Bymonth, int(m))
		}
		opt.Bymonthday = []int{f.DayOfMonth}
	default:
		return rrule.ROption{}, errors.Errorf("unsupported frequency %T", rec.Frequency)
	}
	return opt, nil
}

func (e RRuleExpander) Expand(rec session.Recurrence) ([]time.Time, error) {
	opt, err := Option(rec)
	if err != nil {
		return nil, err
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, errors.Wrap(err, "building rule")
	}

	var set rrule.Set
	set.RRule(r)

	until := opt.Dtstart.Add(e.Horizon)
	if rec.SeriesEnd != nil && opt.Until.Before(until) {
		until = opt.Until
	}
	dates := set.Between(opt.Dtstart, until, true)
	if e.MaxOccurrences > 0 && len(dates) > e.MaxOccurrences {
		dates = dates[:e.MaxOccurrences]
	}
	for i, d := range dates {
		dates[i] = session.Day(d)
	}
	return dates, nil
}
