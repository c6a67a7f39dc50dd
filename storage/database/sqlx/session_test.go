package sqlxrepos_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
	sqlxrepos "github.com/trezcool/masomo-calendar/storage/database/sqlx"
	"github.com/trezcool/masomo-calendar/tests"
)

var day1 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T) (session.InstanceRepository, session.RecurrenceRepository) {
	db := testutil.PrepareDB(t)
	return sqlxrepos.NewInstanceRepository(db), sqlxrepos.NewRecurrenceRepository(db)
}

func TestRecurrenceRepository(t *testing.T) {
	_, recs := setup(t)
	ctx := context.Background()

	end := day1.AddDate(0, 6, 0)
	rec := session.Recurrence{
		ID:         "r1",
		CourseID:   "c1",
		Title:      "Maths",
		AnchorDate: day1,
		StartTime:  "08:00",
		EndTime:    "10:00",
		Frequency:  session.Weekly{Every: 2, Days: []time.Weekday{time.Monday, time.Thursday}},
		SeriesEnd:  &end,
	}
	require.NoError(t, recs.CreateRecurrence(ctx, rec))

	got, err := recs.GetRecurrence(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	rec.Frequency = session.Monthly{Every: 1, DayOfMonth: 3}
	rec.SeriesEnd = nil
	rec.AnchorDate = day1.AddDate(0, 1, 0)
	require.NoError(t, recs.UpdateRecurrence(ctx, rec))
	got, err = recs.GetRecurrence(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	require.NoError(t, recs.DeleteRecurrence(ctx, rec.ID))
	_, err = recs.GetRecurrence(ctx, rec.ID)
	assert.Equal(t, session.ErrRecurrenceNotFound, err)
	assert.Equal(t, session.ErrRecurrenceNotFound, recs.DeleteRecurrence(ctx, rec.ID))
	assert.Equal(t, session.ErrRecurrenceNotFound, recs.UpdateRecurrence(ctx, rec))
}

func TestInstanceRepository(t *testing.T) {
	instances, recs := setup(t)
	ctx := context.Background()

	require.NoError(t, recs.CreateRecurrence(ctx, session.Recurrence{
		ID: "r1", CourseID: "c1", Title: "Maths", AnchorDate: day1, StartTime: "08:00", EndTime: "10:00",
		Frequency: session.Daily{Every: 1},
	}))

	var series []session.Instance
	for i := 0; i < 25; i++ {
		series = append(series, session.Instance{
			ID:           fmt.Sprintf("i%02d", i),
			CourseID:     "c1",
			Title:        "Maths",
			Date:         day1.AddDate(0, 0, i),
			StartTime:    "08:00",
			EndTime:      "10:00",
			RecurrenceID: "r1",
		})
	}
	standalone := session.Instance{ID: "x1", CourseID: "c2", Title: "Exam", Date: day1.AddDate(0, 0, 3), StartTime: "09:00", EndTime: "12:00"}
	require.NoError(t, instances.CreateInstances(ctx, series...))
	require.NoError(t, instances.CreateInstances(ctx, standalone))

	got, err := instances.GetInstance(ctx, standalone.ID)
	require.NoError(t, err)
	assert.Equal(t, standalone, got)

	_, err = instances.GetInstance(ctx, "nope")
	assert.Equal(t, session.ErrNotFound, err)

	byDate := []core.DBOrdering{{Field: "date", Ascending: true}}

	t.Run("query", func(t *testing.T) {
		tests := []struct {
			name   string
			filter session.InstanceFilter
			order  []core.DBOrdering
			limit  int
			want   []string
		}{
			{
				name:   "by ids",
				filter: session.InstanceFilter{IDs: []string{"i03", "x1", "i01"}},
				order:  []core.DBOrdering{{Field: "date", Ascending: true}, {Field: "start_time", Ascending: true}},
				want:   []string{"i01", "i03", "x1"},
			},
			{name: "empty ids", filter: session.InstanceFilter{IDs: []string{}}, want: []string{}},
			{name: "by course", filter: session.InstanceFilter{CourseID: "c2"}, want: []string{"x1"}},
			{
				name:   "series from day 23",
				filter: session.InstanceFilter{RecurrenceID: "r1", DateFrom: day1.AddDate(0, 0, 22)},
				order:  byDate, want: []string{"i22", "i23", "i24"},
			},
			{
				name:   "date range",
				filter: session.InstanceFilter{DateFrom: day1.AddDate(0, 0, 2), DateTo: day1.AddDate(0, 0, 3)},
				order:  []core.DBOrdering{{Field: "date", Ascending: true}, {Field: "start_time", Ascending: false}},
				want:   []string{"i02", "x1", "i03"},
			},
			{
				name:   "earliest",
				filter: session.InstanceFilter{RecurrenceID: "r1"},
				order:  byDate, limit: 1, want: []string{"i00"},
			},
			{
				name:   "latest",
				filter: session.InstanceFilter{RecurrenceID: "r1"},
				order:  []core.DBOrdering{{Field: "date"}}, limit: 1, want: []string{"i24"},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := instances.QueryInstances(ctx, tt.filter, tt.order, tt.limit)
				require.NoError(t, err)
				ids := make([]string, 0, len(got))
				for _, inst := range got {
					ids = append(ids, inst.ID)
				}
				assert.Equal(t, tt.want, ids)
			})
		}

		_, err := instances.QueryInstances(ctx, session.InstanceFilter{}, []core.DBOrdering{{Field: "1; DROP TABLE session_instance"}}, 0)
		assert.Error(t, err)
	})

	t.Run("update", func(t *testing.T) {
		title, start := "Algebra", "07:30"
		ids := []string{"i10", "i11", "i12"}
		require.NoError(t, instances.UpdateInstances(ctx, ids, session.InstancePatch{Title: &title, StartTime: &start}))

		got, err := instances.QueryInstances(ctx, session.InstanceFilter{IDs: ids}, nil, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, inst := range got {
			assert.Equal(t, "Algebra", inst.Title)
			assert.Equal(t, "07:30", inst.StartTime)
			assert.Equal(t, "10:00", inst.EndTime)
		}

		moved := day1.AddDate(1, 0, 0)
		require.NoError(t, instances.UpdateInstance(ctx, "x1", session.InstancePatch{Date: &moved}))
		inst, err := instances.GetInstance(ctx, "x1")
		require.NoError(t, err)
		assert.Equal(t, moved, inst.Date)
		assert.Equal(t, "Exam", inst.Title)

		assert.Equal(t, session.ErrNotFound, instances.UpdateInstance(ctx, "nope", session.InstancePatch{Title: &title}))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, instances.DeleteInstances(ctx, []string{"i20", "i21", "i22", "i23", "i24"}))
		require.NoError(t, instances.DeleteInstance(ctx, "x1"))
		assert.Equal(t, session.ErrNotFound, instances.DeleteInstance(ctx, "x1"))

		got, err := instances.QueryInstances(ctx, session.InstanceFilter{}, nil, 0)
		require.NoError(t, err)
		assert.Len(t, got, 20)
	})
}
