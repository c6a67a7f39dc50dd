package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core/session"
)

type sessionApi struct {
	svc      *session.Service
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service, validate *validator.Validate) {
	api := sessionApi{svc: svc, validate: validate}

	sg := g.Group("/sessions", jwt, userContextMiddleware)
	sg.GET("", api.query)
	sg.POST("", api.create)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/form", api.form)
	dg.POST("/eligibility", api.eligibility)
	dg.GET("/delete-scopes", api.deleteScopes)

	rg := g.Group("/recurrences", jwt, userContextMiddleware)
	rg.POST("", api.createRecurrence)
	rg.GET("/:id", api.retrieveRecurrence)
}

// Handlers

func (api *sessionApi) query(ctx echo.Context) error {
	filter, err := bindInstanceFilter(ctx)
	if err != nil {
		return err
	}
	var ord Ordering
	ord.Bind(ctx)

	instances, err := api.svc.Query(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, instances)
}

func (api *sessionApi) create(ctx echo.Context) error {
	var data session.NewInstance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstance")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	inst, err := api.svc.CreateInstance(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	inst, err := api.svc.GetInstance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding session")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *sessionApi) form(ctx echo.Context) error {
	form, err := api.svc.Form(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "loading session form")
	}
	return ctx.JSON(http.StatusOK, form)
}

// bindScopedForm binds an edit of the session form. The form may be half-filled.
func (api *sessionApi) bindScopedForm(ctx echo.Context) (session.Scope, session.Form, session.Form, error) {
	var data ScopedFormRequest
	if err := ctx.Bind(&data); err != nil {
		return session.ScopeNone, session.Form{}, session.Form{}, errors.Wrap(err, "binding to ScopedFormRequest")
	}
	scope, err := session.ParseScope(data.Scope)
	if err != nil {
		return session.ScopeNone, session.Form{}, session.Form{}, err
	}
	return scope, data.Current, data.Original, nil
}

func (api *sessionApi) eligibility(ctx echo.Context) error {
	scope, current, original, err := api.bindScopedForm(ctx)
	if err != nil {
		return err
	}

	e, err := api.svc.Eligibility(ctx.Request().Context(), ctx.Param("id"), current, original, scope)
	if err != nil {
		return errors.Wrap(err, "resolving scopes")
	}
	reasons := make(map[session.Scope]string)
	for _, s := range session.Scopes {
		if r := e.Reason(s); r != "" {
			reasons[s] = r
		}
	}
	return ctx.JSON(http.StatusOK, EligibilityResponse{Eligibility: e, Reasons: reasons})
}

func (api *sessionApi) deleteScopes(ctx echo.Context) error {
	inst, err := api.svc.GetInstance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding session")
	}
	return ctx.JSON(http.StatusOK, session.DeleteScopes(inst))
}

func (api *sessionApi) update(ctx echo.Context) error {
	scope, current, original, err := api.bindScopedForm(ctx)
	if err != nil {
		return &cascadeError{op: session.OpUpdate, err: err}
	}
	if err = api.validate.Struct(current); err != nil {
		return &cascadeError{op: session.OpUpdate, err: err}
	}

	req := session.UpdateRequest{Scope: scope, Current: current, Original: original}
	out, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), req)
	if err != nil {
		return &cascadeError{op: session.OpUpdate, err: err}
	}
	return ctx.JSON(http.StatusOK, CascadeResponse{Outcome: out, Notice: session.NoticeFor(session.OpUpdate, nil)})
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	scope, err := session.ParseScope(ctx.QueryParam("scope"))
	if err != nil {
		return &cascadeError{op: session.OpDelete, err: err}
	}

	out, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), scope)
	if err != nil {
		return &cascadeError{op: session.OpDelete, err: err}
	}
	return ctx.JSON(http.StatusOK, CascadeResponse{Outcome: out, Notice: session.NoticeFor(session.OpDelete, nil)})
}

func (api *sessionApi) createRecurrence(ctx echo.Context) error {
	var data session.NewRecurrence
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecurrence")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	rec, instances, err := api.svc.CreateRecurrence(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating recurrence")
	}
	return ctx.JSON(http.StatusCreated, RecurrenceResponse{Recurrence: rec, Sessions: instances})
}

func (api *sessionApi) retrieveRecurrence(ctx echo.Context) error {
	rec, err := api.svc.GetRecurrence(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding recurrence")
	}
	return ctx.JSON(http.StatusOK, rec)
}
