package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	end := day.AddDate(0, 3, 0)
	original := Form{
		Title:     "Maths",
		Date:      day,
		StartTime: "08:00",
		EndTime:   "10:00",
		Recurring: true,
		Frequency: FrequencySpec{Kind: KindWeekly, Interval: 1, Weekdays: []time.Weekday{time.Monday, time.Wednesday}},
		SeriesEnd: &end,
	}

	edit := func(fn func(f *Form)) Form {
		f := original
		f.Frequency.Weekdays = append([]time.Weekday(nil), original.Frequency.Weekdays...)
		fn(&f)
		return f
	}
	laterEnd := end.AddDate(0, 0, 7)

	tests := []struct {
		name    string
		current Form
		want    Changes
	}{
		{name: "nothing", current: original, want: Changes{}},
		{name: "same day, other clock time", current: edit(func(f *Form) { f.Date = day.Add(15 * time.Hour) }), want: Changes{}},
		{name: "title", current: edit(func(f *Form) { f.Title = "Physics" }), want: Changes{Cosmetic: true}},
		{name: "title whitespace", current: edit(func(f *Form) { f.Title = "  Maths " }), want: Changes{}},
		{name: "date", current: edit(func(f *Form) { f.Date = day.AddDate(0, 0, 1) }), want: Changes{Anchor: true}},
		{name: "start", current: edit(func(f *Form) { f.StartTime = "09:00" }), want: Changes{Temporal: true}},
		{name: "end", current: edit(func(f *Form) { f.EndTime = "11:00" }), want: Changes{Temporal: true}},
		{
			name:    "weekdays reordered",
			current: edit(func(f *Form) { f.Frequency.Weekdays = []time.Weekday{time.Wednesday, time.Monday, time.Monday} }),
			want:    Changes{},
		},
		{
			name:    "weekdays changed",
			current: edit(func(f *Form) { f.Frequency.Weekdays = []time.Weekday{time.Tuesday} }),
			want:    Changes{Frequency: true},
		},
		{
			name:    "inactive mode parameter",
			current: edit(func(f *Form) { f.Frequency.DayOfMonth = 12 }),
			want:    Changes{},
		},
		{name: "interval", current: edit(func(f *Form) { f.Frequency.Interval = 2 }), want: Changes{Frequency: true}},
		{name: "kind", current: edit(func(f *Form) { f.Frequency.Kind = KindDaily }), want: Changes{Frequency: true}},
		{name: "series end", current: edit(func(f *Form) { f.SeriesEnd = &laterEnd }), want: Changes{Frequency: true}},
		{name: "series end removed", current: edit(func(f *Form) { f.SeriesEnd = nil }), want: Changes{Frequency: true}},
		{name: "recurring toggle", current: edit(func(f *Form) { f.Recurring = false }), want: Changes{Frequency: true}},
		{
			name: "date and time",
			current: edit(func(f *Form) {
				f.Date = day.AddDate(0, 0, 2)
				f.EndTime = "10:30"
			}),
			want: Changes{Anchor: true, Temporal: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.current, original))
		})
	}
}

func TestClassify_NotRecurring(t *testing.T) {
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	original := Form{Title: "Maths", Date: day, StartTime: "08:00", EndTime: "10:00"}
	current := original
	current.Frequency = FrequencySpec{Kind: KindDaily, Interval: 3}

	// frequency fields are ignored while neither side recurs
	assert.False(t, Classify(current, original).Any())
}
