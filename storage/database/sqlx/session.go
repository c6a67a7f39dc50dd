package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
)

const (
	instanceTable   = "session_instance"
	recurrenceTable = "session_recurrence"

	instanceColumns   = "id, course_id, title, date, start_time, end_time, recurrence_id"
	recurrenceColumns = "id, course_id, title, anchor_date, start_time, end_time, frequency, series_end"
)

// orderable columns of session_instance
var instanceOrderings = map[string]bool{
	"id": true, "course_id": true, "title": true, "date": true, "start_time": true, "end_time": true,
}

type instanceRepository struct {
	db *sqlx.DB
}

var _ session.InstanceRepository = (*instanceRepository)(nil) // interface compliance check

func NewInstanceRepository(db *sqlx.DB) session.InstanceRepository {
	return &instanceRepository{db: db}
}

func (repo *instanceRepository) GetInstance(ctx context.Context, id string) (session.Instance, error) {
	var row instanceRow
	q := repo.db.Rebind("SELECT " + instanceColumns + " FROM " + instanceTable + " WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Instance{}, session.ErrNotFound
		}
		return session.Instance{}, errors.Wrap(err, "selecting session")
	}
	return row.instance()
}

func (repo *instanceRepository) QueryInstances(ctx context.Context, filter session.InstanceFilter, ordering []core.DBOrdering, limit int) ([]session.Instance, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.IDs != nil {
		if len(filter.IDs) == 0 {
			return []session.Instance{}, nil
		}
		conds = append(conds, "id IN (?)")
		args = append(args, filter.IDs)
	}
	if filter.CourseID != "" {
		conds = append(conds, "course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.RecurrenceID != "" {
		conds = append(conds, "recurrence_id = ?")
		args = append(args, filter.RecurrenceID)
	}
	if !filter.DateFrom.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, formatDate(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, formatDate(filter.DateTo))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + instanceColumns + " FROM " + instanceTable)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	orders := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if !instanceOrderings[ord.Field] {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "ordering", Error: "cannot order sessions by " + ord.Field})
		}
		orders = append(orders, ord.String())
	}
	if len(orders) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}
	if limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(limit))
	}

	q, args, err := sqlx.In(sb.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "building sessions query")
	}
	var rows []instanceRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}

	instances := make([]session.Instance, 0, len(rows))
	for _, row := range rows {
		inst, err := row.instance()
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

func (repo *instanceRepository) CreateInstances(ctx context.Context, instances ...session.Instance) error {
	if len(instances) == 0 {
		return nil
	}
	rows := make([]instanceRow, 0, len(instances))
	for _, inst := range instances {
		rows = append(rows, newInstanceRow(inst))
	}
	q := "INSERT INTO " + instanceTable + " (" + instanceColumns + ") " +
		"VALUES (:id, :course_id, :title, :date, :start_time, :end_time, :recurrence_id)"
	_, err := repo.db.NamedExecContext(ctx, q, rows)
	return errors.Wrap(err, "inserting sessions")
}

// setClause renders the SET clause of patch.
func setClause(patch session.InstancePatch) (string, []interface{}) {
	var (
		sets []string
		args []interface{}
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, formatDate(*patch.Date))
	}
	if patch.StartTime != nil {
		sets = append(sets, "start_time = ?")
		args = append(args, *patch.StartTime)
	}
	if patch.EndTime != nil {
		sets = append(sets, "end_time = ?")
		args = append(args, *patch.EndTime)
	}
	return strings.Join(sets, ", "), args
}

func (repo *instanceRepository) UpdateInstance(ctx context.Context, id string, patch session.InstancePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	set, args := setClause(patch)
	q := repo.db.Rebind("UPDATE " + instanceTable + " SET " + set + " WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, append(args, id)...)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return checkAffected(res)
}

func (repo *instanceRepository) UpdateInstances(ctx context.Context, ids []string, patch session.InstancePatch) error {
	if len(ids) == 0 || patch.IsEmpty() {
		return nil
	}
	set, args := setClause(patch)
	q, args, err := sqlx.In("UPDATE "+instanceTable+" SET "+set+" WHERE id IN (?)", append(args, ids)...)
	if err != nil {
		return errors.Wrap(err, "building sessions update")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return errors.Wrap(err, "updating sessions")
}

func (repo *instanceRepository) DeleteInstance(ctx context.Context, id string) error {
	q := repo.db.Rebind("DELETE FROM " + instanceTable + " WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return checkAffected(res)
}

func (repo *instanceRepository) DeleteInstances(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM "+instanceTable+" WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "building sessions delete")
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting sessions")
}

type recurrenceRepository struct {
	db *sqlx.DB
}

var _ session.RecurrenceRepository = (*recurrenceRepository)(nil) // interface compliance check

func NewRecurrenceRepository(db *sqlx.DB) session.RecurrenceRepository {
	return &recurrenceRepository{db: db}
}

func (repo *recurrenceRepository) GetRecurrence(ctx context.Context, id string) (session.Recurrence, error) {
	var row recurrenceRow
	q := repo.db.Rebind("SELECT " + recurrenceColumns + " FROM " + recurrenceTable + " WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Recurrence{}, session.ErrRecurrenceNotFound
		}
		return session.Recurrence{}, errors.Wrap(err, "selecting recurrence")
	}
	return row.recurrence()
}

func (repo *recurrenceRepository) CreateRecurrence(ctx context.Context, rec session.Recurrence) error {
	q := "INSERT INTO " + recurrenceTable + " (" + recurrenceColumns + ") " +
		"VALUES (:id, :course_id, :title, :anchor_date, :start_time, :end_time, :frequency, :series_end)"
	_, err := repo.db.NamedExecContext(ctx, q, newRecurrenceRow(rec))
	return errors.Wrap(err, "inserting recurrence")
}

func (repo *recurrenceRepository) UpdateRecurrence(ctx context.Context, rec session.Recurrence) error {
	q := "UPDATE " + recurrenceTable + " SET title = :title, anchor_date = :anchor_date, " +
		"start_time = :start_time, end_time = :end_time, frequency = :frequency, series_end = :series_end " +
		"WHERE id = :id"
	res, err := repo.db.NamedExecContext(ctx, q, newRecurrenceRow(rec))
	if err != nil {
		return errors.Wrap(err, "updating recurrence")
	}
	return recurrenceAffected(res)
}

func (repo *recurrenceRepository) DeleteRecurrence(ctx context.Context, id string) error {
	q := repo.db.Rebind("DELETE FROM " + recurrenceTable + " WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting recurrence")
	}
	return recurrenceAffected(res)
}

// recurrenceAffected is checkAffected for the recurrence table.
func recurrenceAffected(res sql.Result) error {
	err := checkAffected(res)
	if err == session.ErrNotFound {
		return session.ErrRecurrenceNotFound
	}
	return err
}

// checkAffected returns session.ErrNotFound when res touched no row.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}
