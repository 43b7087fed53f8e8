package storage_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/verdict/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Enabled {
		t.Error("storage should be disabled by default")
	}
	if cfg.ContainerName != "models" {
		t.Errorf("container_name: got %s, want models", cfg.ContainerName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_ENABLED", "true")
	t.Setenv("TEST_CONTAINER", "sentiment")
	t.Setenv("TEST_ACCOUNT_URL", "https://verdict.blob.core.windows.net")

	env := &storage.Env{
		Enabled:       "TEST_ENABLED",
		ContainerName: "TEST_CONTAINER",
		AccountURL:    "TEST_ACCOUNT_URL",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled: got false, want true")
	}
	if cfg.ContainerName != "sentiment" {
		t.Errorf("container_name: got %s, want sentiment", cfg.ContainerName)
	}
	if cfg.AccountURL != "https://verdict.blob.core.windows.net" {
		t.Errorf("account_url: got %s", cfg.AccountURL)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{
			name: "disabled skips validation",
			cfg:  storage.Config{},
		},
		{
			name:    "enabled without credentials",
			cfg:     storage.Config{Enabled: true},
			wantErr: "connection_string or account_url required",
		},
		{
			name: "enabled with connection string",
			cfg:  storage.Config{Enabled: true, ConnectionString: "conn"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{
		Enabled:          true,
		ContainerName:    "models",
		ConnectionString: "base-conn",
	}

	base.Merge(&storage.Config{ConnectionString: "overlay-conn"})

	if base.Enabled {
		t.Error("enabled should follow the overlay")
	}
	if base.ContainerName != "models" {
		t.Errorf("container_name should remain models, got %s", base.ContainerName)
	}
	if base.ConnectionString != "overlay-conn" {
		t.Errorf("connection_string: got %s, want overlay-conn", base.ConnectionString)
	}
}
