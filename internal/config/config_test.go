package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Model.SmokeSoluteSMILES != "CCO" {
		t.Errorf("expected smoke solute CCO, got %q", cfg.Model.SmokeSoluteSMILES)
	}
	if cfg.Inference.MaxBatchSize < 420 {
		t.Errorf("max batch size must cover a screening grid, got %d", cfg.Inference.MaxBatchSize)
	}
}

func TestLoad_MissingEnv(t *testing.T) {
	if _, err := Load("no-such-env"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 9000}}
	cfg.ApplyDefaults()

	if cfg.Model.CheckpointPath == "" {
		t.Error("expected default checkpoint path")
	}
	if cfg.Model.SmokeTemperatureK != 298.15 {
		t.Errorf("expected default smoke temperature 298.15, got %g", cfg.Model.SmokeTemperatureK)
	}
	if cfg.Inference.Workers <= 0 {
		t.Error("expected positive default worker count")
	}
	if cfg.Inference.GraphCacheTTLSec != 600 {
		t.Errorf("expected default cache TTL 600, got %d", cfg.Inference.GraphCacheTTLSec)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_BatchBelowScreeningGrid(t *testing.T) {
	cfg := validConfig()
	cfg.Inference.MaxBatchSize = 100

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for batch size below the screening grid")
	}
	if !strings.Contains(err.Error(), "420") {
		t.Errorf("error must mention the grid size, got %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SOLUSCAN_TEST_PORT", "9999")

	got := string(expandEnvVars([]byte("port: ${SOLUSCAN_TEST_PORT}")))
	if got != "port: 9999" {
		t.Errorf("expected substitution, got %q", got)
	}

	got = string(expandEnvVars([]byte("path: ${SOLUSCAN_TEST_UNSET:-fallback.json}")))
	if got != "path: fallback.json" {
		t.Errorf("expected default value, got %q", got)
	}
}
