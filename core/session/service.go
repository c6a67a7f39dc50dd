package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core"
)

// Action is a capability checked before any call to the store.
type Action string

const (
	ActionView   Action = "session:view"
	ActionCreate Action = "session:create"
	ActionUpdate Action = "session:update"
	ActionDelete Action = "session:delete"
)

type (
	// InstanceRepository is the sessionInstances collection.
	InstanceRepository interface {
		GetInstance(ctx context.Context, id string) (Instance, error)
		// QueryInstances returns the instances matching filter. A limit <= 0 means no limit.
		QueryInstances(ctx context.Context, filter InstanceFilter, ordering []core.DBOrdering, limit int) ([]Instance, error)
		CreateInstances(ctx context.Context, instances ...Instance) error
		UpdateInstance(ctx context.Context, id string, patch InstancePatch) error
		// UpdateInstances applies patch to the instances whose id is one of ids.
		UpdateInstances(ctx context.Context, ids []string, patch InstancePatch) error
		DeleteInstance(ctx context.Context, id string) error
		// DeleteInstances removes the instances whose id is one of ids.
		DeleteInstances(ctx context.Context, ids []string) error
	}

	// RecurrenceRepository is the sessionRecurrences collection.
	RecurrenceRepository interface {
		GetRecurrence(ctx context.Context, id string) (Recurrence, error)
		CreateRecurrence(ctx context.Context, rec Recurrence) error
		UpdateRecurrence(ctx context.Context, rec Recurrence) error
		DeleteRecurrence(ctx context.Context, id string) error
	}

	// Authorizer tells whether the user acting in ctx may perform action.
	Authorizer interface {
		Can(ctx context.Context, action Action) bool
	}

	// ActorFinder is implemented by Authorizers that can tell who acts in a context.
	// The actor is attached to the logs of failed cascades.
	ActorFinder interface {
		Actor(ctx context.Context) (interface{}, bool)
	}

	// Expander computes the occurrence dates of a recurrence.
	Expander interface {
		Expand(rec Recurrence) ([]time.Time, error)
	}
)

// Outcome describes what a cascade did.
type Outcome struct {
	Op                string `json:"op"`
	Scope             Scope  `json:"scope"`
	NoOp              bool   `json:"no_op,omitempty"`
	Instances         int    `json:"instances"` // instances written or removed
	RecurrenceChanged bool   `json:"recurrence_changed,omitempty"`
	RecurrenceDeleted bool   `json:"recurrence_deleted,omitempty"`
}

type Deps struct {
	Instances   InstanceRepository
	Recurrences RecurrenceRepository
	Authorizer  Authorizer
	Expander    Expander
	Logger      core.Logger
	Metrics     Metrics
}

type Service struct {
	instances   InstanceRepository
	recurrences RecurrenceRepository
	perms       Authorizer
	expander    Expander
	logger      core.Logger
	metrics     Metrics
	batcher     Batcher

	mu       sync.Mutex
	inflight map[string]struct{} // series (or standalone session) ids with a running cascade
}

func NewService(deps Deps) *Service {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Service{
		instances:   deps.Instances,
		recurrences: deps.Recurrences,
		perms:       deps.Authorizer,
		expander:    deps.Expander,
		logger:      deps.Logger,
		metrics:     metrics,
		batcher:     Batcher{Size: ChunkSize, Metrics: metrics},
		inflight:    make(map[string]struct{}),
	}
}

func (svc *Service) authorize(ctx context.Context, action Action) error {
	if svc.perms == nil || !svc.perms.Can(ctx, action) {
		return ErrForbidden
	}
	return nil
}

// acquire marks the series key as having a cascade in flight.
func (svc *Service) acquire(key string) (release func(), err error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, busy := svc.inflight[key]; busy {
		return nil, ErrCascadeInFlight
	}
	svc.inflight[key] = struct{}{}
	return func() {
		svc.mu.Lock()
		delete(svc.inflight, key)
		svc.mu.Unlock()
	}, nil
}

func seriesKey(inst Instance) string {
	if inst.IsRecurring() {
		return "recurrence:" + inst.RecurrenceID
	}
	return "instance:" + inst.ID
}

// finish is the cascade boundary: it records the attempt and logs failures.
func (svc *Service) finish(ctx context.Context, op string, id string, scope Scope, err error) {
	svc.metrics.ObserveCascade(op, scope, err)
	if err == nil || svc.logger == nil {
		return
	}

	extras := map[string]interface{}{"op": op, "session_id": id, "scope": scope.String()}
	var berr *BatchError
	if errors.As(err, &berr) {
		extras["chunk"] = berr.Chunk + 1
		extras["chunks"] = berr.Chunks
		extras["applied"] = berr.Applied
		extras["total"] = berr.Total
	}
	args := []interface{}{err, extras}
	if af, ok := svc.perms.(ActorFinder); ok {
		if actor, found := af.Actor(ctx); found {
			args = append(args, actor)
		}
	}

	switch errors.Cause(err) {
	case ErrNotRecurring, ErrUnknownScope, ErrScopeNotSelectable, ErrForbidden, ErrCascadeInFlight, ErrNotFound:
		svc.logger.Warn("session "+op+" rejected", args...)
	default:
		if core.IsValidation(err) {
			svc.logger.Warn("session "+op+" rejected", args...)
			return
		}
		svc.logger.Error("session "+op+" failed", args...)
	}
}

// GetInstance returns the session with the given id.
func (svc *Service) GetInstance(ctx context.Context, id string) (Instance, error) {
	if err := svc.authorize(ctx, ActionView); err != nil {
		return Instance{}, err
	}
	inst, err := svc.instances.GetInstance(ctx, id)
	return inst, errors.Wrap(err, "finding session")
}

// GetRecurrence returns the recurrence with the given id.
func (svc *Service) GetRecurrence(ctx context.Context, id string) (Recurrence, error) {
	if err := svc.authorize(ctx, ActionView); err != nil {
		return Recurrence{}, err
	}
	rec, err := svc.recurrences.GetRecurrence(ctx, id)
	return rec, errors.Wrap(err, "finding recurrence")
}

// Query returns the sessions matching filter.
func (svc *Service) Query(ctx context.Context, filter InstanceFilter, ordering []core.DBOrdering) ([]Instance, error) {
	if err := svc.authorize(ctx, ActionView); err != nil {
		return nil, err
	}
	if ordering == nil {
		ordering = []core.DBOrdering{{Field: "date", Ascending: true}, {Field: "start_time", Ascending: true}}
	}
	instances, err := svc.instances.QueryInstances(ctx, filter, ordering, 0)
	return instances, errors.Wrap(err, "querying sessions")
}

// Form returns the edit form snapshot of a session: the session itself plus the
// flattened fields of its recurrence.
func (svc *Service) Form(ctx context.Context, id string) (Form, error) {
	inst, err := svc.GetInstance(ctx, id)
	if err != nil {
		return Form{}, err
	}
	form := Form{
		Title:     inst.Title,
		Date:      inst.Date,
		StartTime: inst.StartTime,
		EndTime:   inst.EndTime,
	}
	if !inst.IsRecurring() {
		return form, nil
	}

	rec, err := svc.recurrences.GetRecurrence(ctx, inst.RecurrenceID)
	if err != nil {
		return Form{}, errors.Wrap(err, "finding recurrence")
	}
	form.Recurring = true
	form.Frequency = SpecOf(rec.Frequency)
	form.SeriesEnd = rec.SeriesEnd
	return form, nil
}

// Eligibility resolves which scopes may apply the changes made to the form of a session.
func (svc *Service) Eligibility(ctx context.Context, id string, current, original Form, previous Scope) (Eligibility, error) {
	inst, err := svc.GetInstance(ctx, id)
	if err != nil {
		return Eligibility{}, err
	}
	ch := Classify(current, original)
	if !inst.IsRecurring() {
		return resolveStandalone(ch), nil
	}
	return Resolve(ch, previous), nil
}

// CreateInstance creates a standalone session.
func (svc *Service) CreateInstance(ctx context.Context, ni NewInstance) (Instance, error) {
	if err := svc.authorize(ctx, ActionCreate); err != nil {
		return Instance{}, err
	}
	inst := Instance{
		ID:        uuid.New().String(),
		CourseID:  ni.CourseID,
		Title:     core.CleanString(ni.Title),
		Date:      Day(ni.Date),
		StartTime: ni.StartTime,
		EndTime:   ni.EndTime,
	}
	if err := svc.instances.CreateInstances(ctx, inst); err != nil {
		return Instance{}, errors.Wrap(err, "inserting session")
	}
	return inst, nil
}

// CreateRecurrence creates a recurrence and materializes its sessions.
func (svc *Service) CreateRecurrence(ctx context.Context, nr NewRecurrence) (rec Recurrence, instances []Instance, err error) {
	if err = svc.authorize(ctx, ActionCreate); err != nil {
		return Recurrence{}, nil, err
	}
	freq, err := nr.Frequency.Frequency()
	if err != nil {
		return Recurrence{}, nil, err
	}

	rec = Recurrence{
		ID:         uuid.New().String(),
		CourseID:   nr.CourseID,
		Title:      core.CleanString(nr.Title),
		AnchorDate: Day(nr.AnchorDate),
		StartTime:  nr.StartTime,
		EndTime:    nr.EndTime,
		Frequency:  freq,
		SeriesEnd:  dayPtr(nr.SeriesEnd),
	}
	if svc.expander == nil {
		return Recurrence{}, nil, errors.New("no recurrence expander configured")
	}
	dates, err := svc.expander.Expand(rec)
	if err != nil {
		return Recurrence{}, nil, errors.Wrap(err, "expanding recurrence")
	}

	if err = svc.recurrences.CreateRecurrence(ctx, rec); err != nil {
		return Recurrence{}, nil, errors.Wrap(err, "inserting recurrence")
	}

	instances = make([]Instance, 0, len(dates))
	byID := make(map[string]Instance, len(dates))
	ids := make([]string, 0, len(dates))
	for _, d := range dates {
		inst := Instance{
			ID:           uuid.New().String(),
			CourseID:     rec.CourseID,
			Title:        rec.Title,
			Date:         Day(d),
			StartTime:    rec.StartTime,
			EndTime:      rec.EndTime,
			RecurrenceID: rec.ID,
		}
		instances = append(instances, inst)
		byID[inst.ID] = inst
		ids = append(ids, inst.ID)
	}

	err = svc.batcher.Run(ctx, OpCreate, ids, func(ctx context.Context, chunk []string) error {
		batch := make([]Instance, 0, len(chunk))
		for _, id := range chunk {
			batch = append(batch, byID[id])
		}
		return svc.instances.CreateInstances(ctx, batch...)
	})
	if err != nil {
		svc.finish(ctx, OpCreate, rec.ID, All, err)
		return Recurrence{}, nil, errors.Wrap(err, "inserting sessions")
	}
	return rec, instances, nil
}

// earliestDate returns the date of the earliest session still in the series.
func (svc *Service) earliestDate(ctx context.Context, recurrenceID string) (time.Time, error) {
	first, err := svc.instances.QueryInstances(
		ctx,
		InstanceFilter{RecurrenceID: recurrenceID},
		[]core.DBOrdering{{Field: "date", Ascending: true}},
		1,
	)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "querying earliest session")
	}
	if len(first) == 0 {
		return time.Time{}, errors.Wrap(ErrNotFound, "querying earliest session")
	}
	return first[0].Date, nil
}

// members returns the ids of the sessions of a series, from the given day when
// from is set.
func (svc *Service) members(ctx context.Context, recurrenceID string, from time.Time) ([]string, error) {
	filter := InstanceFilter{RecurrenceID: recurrenceID}
	if !from.IsZero() {
		filter.DateFrom = Day(from)
	}
	instances, err := svc.instances.QueryInstances(ctx, filter, []core.DBOrdering{{Field: "date", Ascending: true}}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "querying series sessions")
	}
	ids := make([]string, 0, len(instances))
	for _, inst := range instances {
		ids = append(ids, inst.ID)
	}
	return ids, nil
}
