package recurrencesvc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-calendar/core/session"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRRuleExpander_Expand(t *testing.T) {
	end := day(2021, 1, 31)
	exp := RRuleExpander{Horizon: 365 * 24 * time.Hour, MaxOccurrences: 500}

	tests := []struct {
		name  string
		rec   session.Recurrence
		count int
		first time.Time
		last  time.Time
	}{
		{
			name:  "daily until series end",
			rec:   session.Recurrence{AnchorDate: day(2021, 1, 1), Frequency: session.Daily{Every: 1}, SeriesEnd: &end},
			count: 31, first: day(2021, 1, 1), last: day(2021, 1, 31),
		},
		{
			name:  "every other day",
			rec:   session.Recurrence{AnchorDate: day(2021, 1, 1), Frequency: session.Daily{Every: 2}, SeriesEnd: &end},
			count: 16, first: day(2021, 1, 1), last: day(2021, 1, 31),
		},
		{
			name: "mondays & wednesdays",
			// 2021-01-04 is a Monday
			rec:   session.Recurrence{AnchorDate: day(2021, 1, 4), Frequency: session.Weekly{Every: 1, Days: []time.Weekday{time.Monday, time.Wednesday}}, SeriesEnd: &end},
			count: 8, first: day(2021, 1, 4), last: day(2021, 1, 27),
		},
		{
			name:  "monthly over the horizon",
			rec:   session.Recurrence{AnchorDate: day(2021, 1, 15), Frequency: session.Monthly{Every: 1, DayOfMonth: 15}},
			count: 13, first: day(2021, 1, 15), last: day(2022, 1, 15),
		},
		{
			name:  "annually",
			rec:   session.Recurrence{AnchorDate: day(2021, 1, 1), Frequency: session.Annually{Every: 1, Months: []time.Month{time.September}, DayOfMonth: 6}},
			count: 1, first: day(2021, 9, 6), last: day(2021, 9, 6),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := exp.Expand(tt.rec)
			require.NoError(t, err)
			require.Len(t, dates, tt.count)
			assert.Equal(t, tt.first, dates[0])
			assert.Equal(t, tt.last, dates[len(dates)-1])
		})
	}
}

func TestRRuleExpander_MaxOccurrences(t *testing.T) {
	exp := RRuleExpander{Horizon: 365 * 24 * time.Hour, MaxOccurrences: 25}
	dates, err := exp.Expand(session.Recurrence{AnchorDate: day(2021, 1, 1), Frequency: session.Daily{Every: 1}})
	require.NoError(t, err)
	assert.Len(t, dates, 25)
}
