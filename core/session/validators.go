package session

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-calendar/core"
)

var (
	clockTag  = "clock"
	clockText = "{0} must be a time formatted as HH:MM"

	endBeforeStartTag  = "after_start"
	endBeforeStartText = "the session must end after it starts"
)

// InitValidators registers the session validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(clockTag, clockValidation)
	core.RegisterCustomTranslation(validate, translator, clockTag, clockText)

	validate.RegisterStructValidation(timesStructLevelValidation, Form{}, NewInstance{}, NewRecurrence{})
	core.RegisterCustomTranslation(validate, translator, endBeforeStartTag, endBeforeStartText)
}

func clockValidation(fl validator.FieldLevel) bool {
	_, err := time.Parse(ClockLayout, fl.Field().String())
	return err == nil
}

// timesStructLevelValidation checks that end_time comes after start_time.
// Unparsable times are reported by the clock tag instead.
func timesStructLevelValidation(sl validator.StructLevel) {
	var start, end string
	switch v := sl.Current().Interface().(type) {
	case Form:
		start, end = v.StartTime, v.EndTime
	case NewInstance:
		start, end = v.StartTime, v.EndTime
	case NewRecurrence:
		start, end = v.StartTime, v.EndTime
	default:
		return
	}

	s, err1 := time.Parse(ClockLayout, start)
	e, err2 := time.Parse(ClockLayout, end)
	if err1 != nil || err2 != nil {
		return
	}
	if !e.After(s) {
		sl.ReportError(end, "end_time", "EndTime", endBeforeStartTag, "")
	}
}
