package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core"
	"github.com/trezcool/masomo-calendar/core/session"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

// cascadeError marks the failure of a session update or delete, whose response
// carries a notice for the user.
type cascadeError struct {
	op  string
	err error
}

func (e *cascadeError) Error() string { return e.err.Error() }
func (e *cascadeError) Cause() error  { return e.err }
func (e *cascadeError) Unwrap() error { return e.err }

// sessionErrorCode returns the HTTP status of the session errors.
func sessionErrorCode(err error) (int, bool) {
	switch err {
	case session.ErrNotFound, session.ErrRecurrenceNotFound:
		return http.StatusNotFound, true
	case session.ErrForbidden:
		return http.StatusForbidden, true
	case session.ErrNotRecurring, session.ErrUnknownScope, session.ErrScopeNotSelectable:
		return http.StatusBadRequest, true
	case session.ErrCascadeInFlight:
		return http.StatusConflict, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		var notice *session.Notice
		var cerr *cascadeError
		if errors.As(err, &cerr) {
			n := session.NoticeFor(cerr.op, cerr.err)
			notice = &n
		}

		cause := errors.Cause(err)
		if sCode, ok := sessionErrorCode(cause); ok {
			code = sCode
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				args := []interface{}{errors.Wrap(err, msg)}
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					args = append(args, claims.User())
				}
				// cascade failures are logged by the session service
				if cerr == nil {
					logger.Error(msg, args...)
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		switch m := message.(type) {
		case string:
			body := echo.Map{"error": m}
			if notice != nil {
				body["notice"] = notice
			}
			message = body
		default: // field errors
			if notice != nil {
				message = echo.Map{"error": m, "notice": notice}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
