package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
)

var (
	orderingParam = "ordering"
	dateLayout    = "2006-01-02"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindInstanceFilter reads the session filters from the query string.
func bindInstanceFilter(ctx echo.Context) (session.InstanceFilter, error) {
	filter := session.InstanceFilter{
		CourseID:     ctx.QueryParam("course"),
		RecurrenceID: ctx.QueryParam("recurrence"),
	}
	if ids := ctx.QueryParams()["id"]; len(ids) > 0 {
		filter.IDs = ids
	}

	var fldErrs []core.FieldError
	parse := func(param string, dst *time.Time) {
		val := ctx.QueryParam(param)
		if val == "" {
			return
		}
		d, err := time.Parse(dateLayout, val)
		if err != nil {
			fldErrs = append(fldErrs, core.FieldError{Field: param, Error: "expected a date formatted as YYYY-MM-DD"})
			return
		}
		*dst = d
	}
	parse("date_from", &filter.DateFrom)
	parse("date_to", &filter.DateTo)

	if len(fldErrs) > 0 {
		return session.InstanceFilter{}, core.NewValidationError(nil, fldErrs...)
	}
	return filter, nil
}

// ScopedFormRequest is the payload of session edits & eligibility checks.
type ScopedFormRequest struct {
	Scope    string       `json:"scope"`
	Current  session.Form `json:"current"`
	Original session.Form `json:"original"`
}

// CascadeResponse is the result of a session edit or delete.
type CascadeResponse struct {
	Outcome session.Outcome `json:"outcome"`
	Notice  session.Notice  `json:"notice"`
}

// EligibilityResponse lists the scopes that can apply a form edit.
type EligibilityResponse struct {
	session.Eligibility
	Reasons map[session.Scope]string `json:"reasons"`
}

// RecurrenceResponse is a recurrence with its materialized sessions.
type RecurrenceResponse struct {
	Recurrence session.Recurrence `json:"recurrence"`
	Sessions   []session.Instance `json:"sessions"`
}
