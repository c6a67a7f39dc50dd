package session

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-calendar/core"
)

var (
	// errors
	ErrNotFound           = errors.New("session not found")
	ErrRecurrenceNotFound = errors.New("recurrence not found")
	ErrNotRecurring       = errors.New("session is not part of a recurring series")
	ErrUnknownScope       = errors.New("unrecognized scope")
	ErrScopeNotSelectable = errors.New("scope cannot apply these changes")
	ErrForbidden          = errors.New("permission denied")
	ErrCascadeInFlight    = errors.New("another change to this series is in progress")
)

// BatchError reports the chunk a batched bulk operation stopped at.
// Chunks before it stay applied.
type BatchError struct {
	Op      string
	Chunk   int // 0-based index of the failed chunk
	Chunks  int
	Applied int // ids processed by the chunks that succeeded
	Total   int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("bulk %s: chunk %d/%d failed after %d/%d ids: %v", e.Op, e.Chunk+1, e.Chunks, e.Applied, e.Total, e.Err)
}

// Cause makes the underlying error reachable by errors.Cause.
func (e *BatchError) Cause() error { return e.Err }

func (e *BatchError) Unwrap() error { return e.Err }

// Notice is the single user-facing message of a cascade attempt.
type Notice struct {
	Level   string `json:"level"` // success | warning | error
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

// NoticeFor converts the result of a cascade into its notice.
// op is the verb shown to the user ("update" or "delete").
func NoticeFor(op string, err error) Notice {
	if err == nil {
		if op == OpDelete {
			return Notice{Level: NoticeSuccess, Message: "Session(s) deleted."}
		}
		return Notice{Level: NoticeSuccess, Message: "Session(s) updated."}
	}

	switch errors.Cause(err) {
	case ErrNotRecurring:
		return Notice{Level: NoticeWarning, Message: "This session is not part of a recurring series; only this session can be changed."}
	case ErrScopeNotSelectable:
		return Notice{Level: NoticeWarning, Message: "These changes cannot be applied with the selected option."}
	case ErrUnknownScope:
		return Notice{Level: NoticeWarning, Message: "Please select which sessions to " + op + "."}
	case ErrCascadeInFlight:
		return Notice{Level: NoticeWarning, Message: "Another change to this series is in progress. Please wait for it to complete."}
	case ErrNotFound, ErrRecurrenceNotFound:
		return Notice{Level: NoticeError, Message: "This session no longer exists."}
	case ErrForbidden:
		return Notice{Level: NoticeError, Message: "You are not allowed to " + op + " sessions."}
	}
	switch cause := errors.Cause(err).(type) {
	case *core.ValidationError:
		return Notice{Level: NoticeWarning, Message: cause.Error()}
	case validator.ValidationErrors:
		return Notice{Level: NoticeWarning, Message: "Please correct the errors in the form."}
	}
	return Notice{Level: NoticeError, Message: "Failed to " + op + " session(s). Please try again."}
}
