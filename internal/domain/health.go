package domain

// HealthStatus indicates doctor check outcomes.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// HealthCheck captures a single diagnostic result.
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Details string       `json:"details,omitempty"`
}

// HealthReport aggregates checks.
type HealthReport struct {
	Checks []HealthCheck `json:"checks"`
}

// Status returns the worst status across all checks.
func (r HealthReport) Status() HealthStatus {
	status := HealthOK
	for _, c := range r.Checks {
		switch c.Status {
		case HealthError:
			return HealthError
		case HealthWarn:
			status = HealthWarn
		}
	}
	return status
}
