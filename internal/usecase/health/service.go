package health

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status       Status
	ModelVersion string
	Checks       map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	model ModelChecker
}

// New creates a Service.
func New(model ModelChecker) *Service {
	return &Service{model: model}
}

// Check runs health checks against all components. The process serves traffic
// even when the model is down, so a failed model check degrades rather than
// kills the status.
func (s *Service) Check() Report {
	checks := make(map[string]CheckResult)

	if s.model.Ready() {
		checks["model"] = CheckOK
	} else {
		checks["model"] = CheckError
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{
		Status:       status,
		ModelVersion: s.model.ModelVersion(),
		Checks:       checks,
	}
}
