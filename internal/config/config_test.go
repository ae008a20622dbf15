package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("port: got %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel == "" {
		t.Error("expected a default log level")
	}
	if cfg.MaxUploadSizeBytes != 10<<20 {
		t.Errorf("max upload size: got %d, want %d", cfg.MaxUploadSizeBytes, 10<<20)
	}
	if Cfg != cfg {
		t.Error("Load must set the global Cfg")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "1048576")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("port: got %q", cfg.Port)
	}
	if cfg.MaxUploadSizeBytes != 1048576 {
		t.Errorf("max upload size: got %d", cfg.MaxUploadSizeBytes)
	}
}

func TestLoadInvalidSizeFallsBack(t *testing.T) {
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "not-a-number")

	cfg := Load()
	if cfg.MaxUploadSizeBytes != 10<<20 {
		t.Errorf("got %d, want default", cfg.MaxUploadSizeBytes)
	}
}
