package health

// ModelChecker reports model readiness.
type ModelChecker interface {
	Ready() bool
	ModelVersion() string
}
