package session

// Operations, as reported to Metrics.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Metrics receives the remote calls made by cascades.
type Metrics interface {
	// ObserveBulkCall is called once per chunk of a batched bulk operation.
	ObserveBulkCall(op string, ids int, err error)
	// ObserveCascade is called once per cascade attempt.
	ObserveCascade(op string, scope Scope, err error)
}

type NopMetrics struct{}

func (NopMetrics) ObserveBulkCall(string, int, error)   {}
func (NopMetrics) ObserveCascade(string, Scope, error) {}
