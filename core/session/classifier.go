package session

import "github.com/trezcool/masomo-calendar/core"

// Changes are the categories of fields that differ between an edit form and its
// original snapshot.
type Changes struct {
	Anchor    bool `json:"anchor"`    // date
	Temporal  bool `json:"temporal"`  // start or end time
	Frequency bool `json:"frequency"` // recurrence toggle, frequency or series end
	Cosmetic  bool `json:"cosmetic"`  // title
}

// Any reports whether any field changed at all.
func (ch Changes) Any() bool {
	return ch.Anchor || ch.Temporal || ch.Frequency || ch.Cosmetic
}

// Classify diffs the current form values against the original snapshot.
// It has no side effects and is meant to be re-run on every form change.
func Classify(current, original Form) Changes {
	ch := Changes{
		Anchor:   !SameDay(current.Date, original.Date),
		Temporal: current.StartTime != original.StartTime || current.EndTime != original.EndTime,
		Cosmetic: core.CleanString(current.Title) != core.CleanString(original.Title),
	}

	switch {
	case current.Recurring != original.Recurring:
		ch.Frequency = true
	case current.Recurring:
		ch.Frequency = !current.Frequency.Equal(original.Frequency) || !sameDayPtr(current.SeriesEnd, original.SeriesEnd)
	}
	return ch
}
