package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
)

type instanceRepository struct {
	db *instanceTable
}

var _ session.InstanceRepository = (*instanceRepository)(nil) // interface compliance check

func NewInstanceRepository(db *DB) session.InstanceRepository {
	return &instanceRepository{db: db.instance}
}

func (repo *instanceRepository) GetInstance(_ context.Context, id string) (session.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return session.Instance{}, session.ErrNotFound
}

func (repo *instanceRepository) QueryInstances(_ context.Context, filter session.InstanceFilter, ordering []core.DBOrdering, limit int) ([]session.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids map[string]bool
	if filter.IDs != nil {
		ids = make(map[string]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	instances := make([]session.Instance, 0)
	for _, inst := range repo.db.table {
		if ids != nil && !ids[inst.ID] {
			continue
		}
		if filter.CourseID != "" && inst.CourseID != filter.CourseID {
			continue
		}
		if filter.RecurrenceID != "" && inst.RecurrenceID != filter.RecurrenceID {
			continue
		}
		if !filter.DateFrom.IsZero() && inst.Date.Before(session.Day(filter.DateFrom)) {
			continue
		}
		if !filter.DateTo.IsZero() && inst.Date.After(session.Day(filter.DateTo)) {
			continue
		}
		instances = append(instances, *inst)
	}

	for _, ord := range ordering {
		if _, ok := fieldValue(session.Instance{}, ord.Field); !ok {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "ordering", Error: "cannot order sessions by " + ord.Field})
		}
	}
	sort.SliceStable(instances, func(i, j int) bool {
		for _, ord := range ordering {
			a, _ := fieldValue(instances[i], ord.Field)
			b, _ := fieldValue(instances[j], ord.Field)
			if a == b {
				continue
			}
			return (a < b) == ord.Ascending
		}
		return instances[i].ID < instances[j].ID
	})

	if limit > 0 && len(instances) > limit {
		instances = instances[:limit]
	}
	return instances, nil
}

// fieldValue returns the sortable value of an instance column.
func fieldValue(inst session.Instance, field string) (string, bool) {
	switch field {
	case "id":
		return inst.ID, true
	case "course_id":
		return inst.CourseID, true
	case "title":
		return inst.Title, true
	case "date":
		return inst.Date.Format("2006-01-02"), true
	case "start_time":
		return inst.StartTime, true
	case "end_time":
		return inst.EndTime, true
	}
	return "", false
}

func (repo *instanceRepository) CreateInstances(_ context.Context, instances ...session.Instance) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, inst := range instances {
		if _, exists := repo.db.table[inst.ID]; exists {
			return errors.Errorf("session %s already exists", inst.ID)
		}
	}
	for _, inst := range instances {
		inst := inst
		inst.Date = session.Day(inst.Date)
		repo.db.table[inst.ID] = &inst
	}
	return nil
}

func (repo *instanceRepository) UpdateInstance(_ context.Context, id string, patch session.InstancePatch) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst, ok := repo.db.table[id]
	if !ok {
		return session.ErrNotFound
	}
	*inst = patch.Apply(*inst)
	return nil
}

func (repo *instanceRepository) UpdateInstances(_ context.Context, ids []string, patch session.InstancePatch) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		if inst, ok := repo.db.table[id]; ok {
			*inst = patch.Apply(*inst)
		}
	}
	return nil
}

func (repo *instanceRepository) DeleteInstance(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return session.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}

func (repo *instanceRepository) DeleteInstances(_ context.Context, ids []string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

type recurrenceRepository struct {
	db *recurrenceTable
}

var _ session.RecurrenceRepository = (*recurrenceRepository)(nil) // interface compliance check

func NewRecurrenceRepository(db *DB) session.RecurrenceRepository {
	return &recurrenceRepository{db: db.recurrence}
}

func (repo *recurrenceRepository) GetRecurrence(_ context.Context, id string) (session.Recurrence, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return session.Recurrence{}, session.ErrRecurrenceNotFound
}

func (repo *recurrenceRepository) CreateRecurrence(_ context.Context, rec session.Recurrence) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, exists := repo.db.table[rec.ID]; exists {
		return errors.Errorf("recurrence %s already exists", rec.ID)
	}
	repo.db.table[rec.ID] = &rec
	return nil
}

func (repo *recurrenceRepository) UpdateRecurrence(_ context.Context, rec session.Recurrence) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[rec.ID]; !ok {
		return session.ErrRecurrenceNotFound
	}
	repo.db.table[rec.ID] = &rec
	return nil
}

func (repo *recurrenceRepository) DeleteRecurrence(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return session.ErrRecurrenceNotFound
	}
	delete(repo.db.table, id)
	return nil
}
