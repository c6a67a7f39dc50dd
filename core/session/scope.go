package session

import "github.com/pkg/errors"

// Scope is the breadth of a cascaded edit or delete.
type Scope int

const (
	ScopeNone Scope = iota
	ThisOnly
	ThisOnwards
	All
)

// Scopes lists the scopes in auto-selection priority order.
var Scopes = []Scope{ThisOnly, ThisOnwards, All}

var scopeNames = map[Scope]string{
	ThisOnly:    "this-session",
	ThisOnwards: "this-session-onwards",
	All:         "all-sessions",
}

func (s Scope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	if s == ScopeNone {
		return ""
	}
	return "unknown"
}

func (s Scope) IsValid() bool {
	_, ok := scopeNames[s]
	return ok
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseScope parses a scope name. The empty string gives ScopeNone.
func ParseScope(name string) (Scope, error) {
	if name == "" {
		return ScopeNone, nil
	}
	for s, n := range scopeNames {
		if n == name {
			return s, nil
		}
	}
	return ScopeNone, errors.Wrapf(ErrUnknownScope, "parsing %q", name)
}

// Eligibility tells which scopes can carry a set of Changes.
type Eligibility struct {
	Changes    Changes        `json:"changes"`
	NoOp       bool           `json:"no_op"`
	Selectable map[Scope]bool `json:"selectable"`
	Selected   Scope          `json:"selected"`

	standalone bool
}

func (e Eligibility) Allows(s Scope) bool {
	return e.Selectable[s]
}

// Reason is the help text explaining why s is not selectable. Empty if it is.
func (e Eligibility) Reason(s Scope) string {
	if e.NoOp {
		return "nothing changed"
	}
	if e.Allows(s) {
		return ""
	}
	if e.standalone {
		if s == ThisOnly || s == ScopeNone {
			return standaloneFrequencyReason
		}
		return "this session is not part of a recurring series"
	}
	switch s {
	case ScopeNone:
		return "frequency and date cannot be changed together"
	case ThisOnly:
		return "a single session cannot have a different frequency than the rest of its series"
	case ThisOnwards:
		return "moving the date of a session only applies to that session"
	case All:
		return "frequency or date changes cannot be applied to all sessions"
	}
	return "unknown scope"
}

// Resolve maps change flags to the selectable scopes and picks one.
// previous is kept while it stays selectable; otherwise the first selectable scope
// in Scopes order is selected (ScopeNone if there is none).
func Resolve(ch Changes, previous Scope) Eligibility {
	e := Eligibility{
		Changes: ch,
		NoOp:    !ch.Any(),
		Selectable: map[Scope]bool{
			ThisOnly:    !ch.Frequency,
			ThisOnwards: !ch.Anchor,
			All:         !ch.Frequency && !ch.Anchor,
		},
	}
	if e.NoOp {
		return e
	}

	if e.Allows(previous) {
		e.Selected = previous
		return e
	}
	for _, s := range Scopes {
		if e.Allows(s) {
			e.Selected = s
			break
		}
	}
	return e
}

const standaloneFrequencyReason = "a single session cannot be turned into a series"

// resolveStandalone is Resolve for sessions that are not part of a series:
// only the session itself can be changed, and it cannot gain a frequency here.
func resolveStandalone(ch Changes) Eligibility {
	e := Eligibility{
		Changes:    ch,
		NoOp:       !ch.Any(),
		Selectable: map[Scope]bool{ThisOnly: !ch.Frequency, ThisOnwards: false, All: false},
		standalone: true,
	}
	if !e.NoOp && e.Allows(ThisOnly) {
		e.Selected = ThisOnly
	}
	return e
}

// DeleteScopes lists the scopes offered when deleting inst.
func DeleteScopes(inst Instance) []Scope {
	if !inst.IsRecurring() {
		return []Scope{ThisOnly}
	}
	return Scopes
}
