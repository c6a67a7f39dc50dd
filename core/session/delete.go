package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Delete removes session id and, depending on scope, the rest of its series.
// ScopeNone deletes the session only. Deleting "all sessions" also deletes the
// recurrence, even when no session is left in the series.
func (svc *Service) Delete(ctx context.Context, id string, scope Scope) (out Outcome, err error) {
	if scope == ScopeNone {
		scope = ThisOnly
	}
	out = Outcome{Op: OpDelete, Scope: scope}
	defer func() { svc.finish(ctx, OpDelete, id, out.Scope, err) }()

	if err = svc.authorize(ctx, ActionDelete); err != nil {
		return out, err
	}
	if !scope.IsValid() {
		return out, ErrUnknownScope
	}

	inst, err := svc.instances.GetInstance(ctx, id)
	if err != nil {
		return out, errors.Wrap(err, "finding session")
	}

	release, err := svc.acquire(seriesKey(inst))
	if err != nil {
		return out, err
	}
	defer release()

	if !inst.IsRecurring() && scope != ThisOnly {
		return out, ErrNotRecurring
	}

	switch scope {
	case ThisOnly:
		if err = svc.instances.DeleteInstance(ctx, inst.ID); err != nil {
			return out, errors.Wrap(err, "deleting session")
		}
		out.Instances = 1
		return out, nil

	case ThisOnwards:
		ids, err := svc.members(ctx, inst.RecurrenceID, inst.Date)
		if err != nil {
			return out, err
		}
		return out, svc.deleteMany(ctx, &out, ids)

	default: // All
		ids, err := svc.members(ctx, inst.RecurrenceID, time.Time{})
		if err != nil {
			return out, err
		}
		if err = svc.deleteMany(ctx, &out, ids); err != nil {
			return out, err
		}
		if err = svc.recurrences.DeleteRecurrence(ctx, inst.RecurrenceID); err != nil {
			return out, errors.Wrap(err, "deleting recurrence")
		}
		out.RecurrenceDeleted = true
		return out, nil
	}
}

func (svc *Service) deleteMany(ctx context.Context, out *Outcome, ids []string) error {
	err := svc.batcher.Run(ctx, OpDelete, ids, func(ctx context.Context, chunk []string) error {
		return svc.instances.DeleteInstances(ctx, chunk)
	})
	if err != nil {
		var berr *BatchError
		if errors.As(err, &berr) {
			out.Instances = berr.Applied
		}
		return errors.Wrap(err, "deleting series sessions")
	}
	out.Instances = len(ids)
	return nil
}
