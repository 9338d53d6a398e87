package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeCheckpoint(t *testing.T, c *Checkpoint) string {
	t.Helper()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal checkpoint: %v", err)
	}
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write checkpoint: %v", err)
	}
	return path
}

func TestLoad_RoundTrip(t *testing.T) {
	want := NewSeeded(1)
	path := writeCheckpoint(t, want)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ModelVersion != want.ModelVersion {
		t.Errorf("expected version %q, got %q", want.ModelVersion, got.ModelVersion)
	}
	if !reflect.DeepEqual(got.Hyper, want.Hyper) {
		t.Errorf("hyperparams mismatch: got %+v, want %+v", got.Hyper, want.Hyper)
	}
	if len(got.Tensors) != len(want.Tensors) {
		t.Errorf("expected %d tensors, got %d", len(want.Tensors), len(got.Tensors))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MissingTensor(t *testing.T) {
	c := NewSeeded(1)
	delete(c.Tensors, "encoder.gru.weight_ih")
	path := writeCheckpoint(t, c)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing tensor")
	}
	if !strings.Contains(err.Error(), "encoder.gru.weight_ih") {
		t.Errorf("error must name the missing tensor, got %v", err)
	}
}

func TestLoad_ShapeMismatch(t *testing.T) {
	c := NewSeeded(1)
	bad := c.Tensors["encoder.node_proj.bias"]
	bad.Shape = []int{3}
	c.Tensors["encoder.node_proj.bias"] = bad
	path := writeCheckpoint(t, c)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for shape mismatch")
	}
}

func TestLoad_BadSchemaVersion(t *testing.T) {
	c := NewSeeded(1)
	c.SchemaVersion = 99
	path := writeCheckpoint(t, c)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported schema version")
	}
}

func TestLoad_EmptyTemperatureRange(t *testing.T) {
	c := NewSeeded(1)
	c.TempMinK, c.TempMaxK = 400, 300
	path := writeCheckpoint(t, c)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for inverted temperature range")
	}
}
