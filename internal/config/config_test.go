package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.Output != OutputTable || cfg.Color != ColorAuto {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Timeout)
	}
	if cfg.Watch.Schedule != "@every 10s" {
		t.Errorf("unexpected schedule %q", cfg.Watch.Schedule)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`api_url: http://garden.local:9000
output: yaml
timeout: 5s
watch:
  schedule: "*/2 * * * *"
  db_url: postgres://garden@localhost/garden
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://garden.local:9000" {
		t.Errorf("unexpected api_url %s", cfg.APIURL)
	}
	if cfg.Output != OutputYAML {
		t.Errorf("unexpected output %s", cfg.Output)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected timeout %v", cfg.Timeout)
	}
	if cfg.Watch.Schedule != "*/2 * * * *" {
		t.Errorf("unexpected schedule %s", cfg.Watch.Schedule)
	}
	// не указано в файле — остаётся по умолчанию
	if cfg.Color != ColorAuto {
		t.Errorf("unexpected color %s", cfg.Color)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: http://from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GARDEN_API_URL", "http://from-env/")
	t.Setenv("DB_URL", "postgres://env")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://from-env" {
		t.Errorf("expected env api_url without trailing slash, got %s", cfg.APIURL)
	}
	if cfg.Watch.DBURL != "postgres://env" {
		t.Errorf("unexpected db_url %s", cfg.Watch.DBURL)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("GARDEN_OUTPUT", "xml")

	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"), nil)
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("watch.metrics_addr", ":9101"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Watch.MetricsAddr != ":9101" {
		t.Errorf("unexpected metrics_addr %s", cfg.Watch.MetricsAddr)
	}

	if err := cfg.Set("flowers", "many"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if err := cfg.Set("timeout", "soon"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if err := cfg.Set("color", "purple"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestPath_FromEnv(t *testing.T) {
	t.Setenv("GARDEN_CONFIG", "/tmp/garden.yaml")
	if got := Path(); got != "/tmp/garden.yaml" {
		t.Errorf("unexpected path %s", got)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output: yaml\ncolor: never\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GARDEN_OUTPUT", "table")
	t.Setenv("GARDEN_API_URL", "http://from-env")

	flags := pflag.NewFlagSet("garden", pflag.ContinueOnError)
	flags.String("api-url", DefaultAPIURL, "")
	flags.String("output", OutputTable, "")
	flags.String("color", ColorAuto, "")
	flags.Duration("timeout", 30*time.Second, "")
	if err := flags.Parse([]string{"--output", "json", "--timeout", "1m"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		got, want any
	}{
		{"flag over env", cfg.Output, OutputJSON},
		{"flag duration", cfg.Timeout, time.Minute},
		// флаг не изменён — значение из окружения
		{"env over unchanged flag", cfg.APIURL, "http://from-env"},
		// флаг не изменён, env пуст — значение из файла
		{"file over unchanged flag", cfg.Color, ColorNever},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_InvalidTimeoutEnv(t *testing.T) {
	t.Setenv("GARDEN_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"), nil)
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestSetInFile_WritesOnlyKey(t *testing.T) {
	t.Setenv("GARDEN_OUTPUT", "json")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := SetInFile(path, "color", "never"); err != nil {
		t.Fatalf("SetInFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Ни значения по умолчанию, ни окружение не попадают в файл.
	if string(data) != "color: never\n" {
		t.Errorf("unexpected file:\n%s", data)
	}
}

func TestSetInFile_KeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	orig := "# my garden\napi_url: http://garden.local\nwatch:\n  schedule: '@every 1m'\n"
	if err := os.WriteFile(path, []byte(orig), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := SetInFile(path, "watch.db_url", "postgres://db"); err != nil {
		t.Fatalf("SetInFile: %v", err)
	}
	if err := SetInFile(path, "api_url", "http://other/"); err != nil {
		t.Fatalf("SetInFile: %v", err)
	}

	data, _ := os.ReadFile(path)
	for _, want := range []string{"# my garden", "api_url: http://other\n", "schedule: '@every 1m'", "db_url: postgres://db"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("file does not contain %q:\n%s", want, data)
		}
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Watch.DBURL != "postgres://db" || cfg.Watch.Schedule != "@every 1m" || cfg.Timeout != 30*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestSetInFile_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := SetInFile(path, "timeout", "45s"); err != nil {
		t.Fatalf("SetInFile: %v", err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
}

func TestSetInFile_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := SetInFile(path, "flowers", "many"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if err := SetInFile(path, "output", "xml"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("rejected values must not create the file: %v", err)
	}
}
