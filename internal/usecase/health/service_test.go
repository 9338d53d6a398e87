package health

import "testing"

// --- Mocks ---

type mockModelChecker struct {
	ready   bool
	version string
}

func (m *mockModelChecker) Ready() bool          { return m.ready }
func (m *mockModelChecker) ModelVersion() string { return m.version }

// --- Tests ---

func TestCheck_Healthy(t *testing.T) {
	svc := New(&mockModelChecker{ready: true, version: "v1"})
	r := svc.Check()

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["model"] != CheckOK {
		t.Errorf("expected model %q, got %q", CheckOK, r.Checks["model"])
	}
	if r.ModelVersion != "v1" {
		t.Errorf("expected model version v1, got %q", r.ModelVersion)
	}
}

func TestCheck_ModelUnready(t *testing.T) {
	svc := New(&mockModelChecker{ready: false})
	r := svc.Check()

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["model"] != CheckError {
		t.Errorf("expected model %q, got %q", CheckError, r.Checks["model"])
	}
}
