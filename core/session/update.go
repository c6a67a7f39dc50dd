package session

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core"
)

// UpdateRequest is a submitted session edit form.
type UpdateRequest struct {
	Scope    Scope
	Current  Form // values being submitted
	Original Form // snapshot the form was opened with
}

// Update applies an edit of session id to the requested scope.
//
// Change flags are recomputed from the forms so they cannot go stale, and the scope
// must be selectable for them. Sessions outside a series are updated directly.
// Rule rewrites (frequency changes and "all sessions" edits) leave the materialized
// sessions to the expansion process.
func (svc *Service) Update(ctx context.Context, id string, req UpdateRequest) (out Outcome, err error) {
	out = Outcome{Op: OpUpdate, Scope: req.Scope}
	defer func() {
		if !out.NoOp {
			svc.finish(ctx, OpUpdate, id, out.Scope, err)
		}
	}()

	if err = svc.authorize(ctx, ActionUpdate); err != nil {
		return out, err
	}
	if req.Scope != ScopeNone && !req.Scope.IsValid() {
		return out, ErrUnknownScope
	}

	inst, err := svc.instances.GetInstance(ctx, id)
	if err != nil {
		return out, errors.Wrap(err, "finding session")
	}

	ch := Classify(req.Current, req.Original)
	if !ch.Any() {
		out.NoOp = true
		return out, nil
	}

	release, err := svc.acquire(seriesKey(inst))
	if err != nil {
		return out, err
	}
	defer release()

	if !inst.IsRecurring() {
		if req.Scope == ThisOnwards || req.Scope == All {
			return out, ErrNotRecurring
		}
		out.Scope = ThisOnly
		if elig := resolveStandalone(ch); !elig.Allows(ThisOnly) {
			return out, core.NewValidationError(nil, core.FieldError{Field: "recurring", Error: elig.Reason(ThisOnly)})
		}
		return out, svc.updateOne(ctx, &out, inst, req.Current)
	}

	elig := Resolve(ch, req.Scope)
	if req.Scope == ScopeNone {
		out.Scope = elig.Selected
	}
	if !elig.Allows(out.Scope) {
		reason := elig.Reason(out.Scope)
		if out.Scope != ScopeNone {
			reason = out.Scope.String() + ": " + reason
		}
		return out, errors.Wrap(ErrScopeNotSelectable, reason)
	}

	switch out.Scope {
	case ThisOnly:
		return out, svc.updateOne(ctx, &out, inst, req.Current)
	case ThisOnwards:
		return out, svc.updateOnwards(ctx, &out, inst, ch, req.Current)
	case All:
		return out, svc.updateAll(ctx, &out, inst, req.Current)
	}
	return out, ErrUnknownScope
}

func (svc *Service) updateOne(ctx context.Context, out *Outcome, inst Instance, form Form) error {
	title := core.CleanString(form.Title)
	date := Day(form.Date)
	patch := InstancePatch{Title: &title, Date: &date, StartTime: &form.StartTime, EndTime: &form.EndTime}
	if err := svc.instances.UpdateInstance(ctx, inst.ID, patch); err != nil {
		return errors.Wrap(err, "updating session")
	}
	out.Instances = 1
	return nil
}

func (svc *Service) updateOnwards(ctx context.Context, out *Outcome, inst Instance, ch Changes, form Form) error {
	if ch.Frequency {
		return svc.rewriteRecurrence(ctx, out, inst.RecurrenceID, form, Day(form.Date))
	}

	ids, err := svc.members(ctx, inst.RecurrenceID, inst.Date)
	if err != nil {
		return err
	}

	title := core.CleanString(form.Title)
	patch := InstancePatch{Title: &title}
	if ch.Temporal {
		patch.StartTime = &form.StartTime
		patch.EndTime = &form.EndTime
	}

	err = svc.batcher.Run(ctx, OpUpdate, ids, func(ctx context.Context, chunk []string) error {
		return svc.instances.UpdateInstances(ctx, chunk, patch)
	})
	if err != nil {
		var berr *BatchError
		if errors.As(err, &berr) {
			out.Instances = berr.Applied
		}
		return errors.Wrap(err, "updating series sessions")
	}
	out.Instances = len(ids)
	return nil
}

func (svc *Service) updateAll(ctx context.Context, out *Outcome, inst Instance, form Form) error {
	anchor, err := svc.earliestDate(ctx, inst.RecurrenceID)
	if err != nil {
		return err
	}
	return svc.rewriteRecurrence(ctx, out, inst.RecurrenceID, form, anchor)
}

// rewriteRecurrence overwrites the rule of a series with the form values.
func (svc *Service) rewriteRecurrence(ctx context.Context, out *Outcome, recurrenceID string, form Form, anchor time.Time) error {
	if !form.Recurring {
		return core.NewValidationError(nil, core.FieldError{Field: "recurring", Error: "a series cannot be turned into a single session"})
	}
	freq, err := form.Frequency.Frequency()
	if err != nil {
		return err
	}

	rec, err := svc.recurrences.GetRecurrence(ctx, recurrenceID)
	if err != nil {
		return errors.Wrap(err, "finding recurrence")
	}
	rec.Title = core.CleanString(form.Title)
	rec.AnchorDate = anchor
	rec.StartTime = form.StartTime
	rec.EndTime = form.EndTime
	rec.Frequency = freq
	rec.SeriesEnd = dayPtr(form.SeriesEnd)

	if err = svc.recurrences.UpdateRecurrence(ctx, rec); err != nil {
		return errors.Wrap(err, "updating recurrence")
	}
	out.RecurrenceChanged = true
	return nil
}
