package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"gensig/config"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.Filename), `
verbosity = 2
minimality = false
lib = ["std"]

[limits]
max-steps = 100
`)

	loaded, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Verbosity != 2 || loaded.Minimality {
		t.Errorf("unexpected config %+v", loaded)
	}

	if loaded.Limits.MaxSteps != 100 || loaded.Limits.MaxDepth != 12 {
		t.Errorf("unexpected limits %+v", loaded.Limits)
	}

	if !loaded.Verify {
		t.Error("verify should keep its default")
	}

	if len(loaded.Lib) != 1 || loaded.Lib[0] != filepath.Join(loaded.Dir, "std") {
		t.Errorf("expected lib to be relative to the config, got %v", loaded.Lib)
	}
}

func TestLoadInvalidLimits(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.Filename), `
[limits]
max-depth = 0
`)

	if _, err := config.Load(dir); err == nil {
		t.Fatal("expected an error")
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.Filename), "verbosity = 1\n")

	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	loaded, err := config.FindAndLoad(nested)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Verbosity != 1 {
		t.Errorf("expected the parent's config, got %+v", loaded)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()

	if err := config.LoadEnv(dir); err != nil {
		t.Fatalf("a missing .env file should be ignored: %v", err)
	}

	writeFile(t, filepath.Join(dir, ".env"), "GENSIG_TEST_MAX_STEPS=50\n")
	t.Setenv("GENSIG_TEST_MAX_STEPS", "")
	os.Unsetenv("GENSIG_TEST_MAX_STEPS")

	if err := config.LoadEnv(dir); err != nil {
		t.Fatal(err)
	}

	if value := os.Getenv("GENSIG_TEST_MAX_STEPS"); value != "50" {
		t.Errorf("expected 50, got %q", value)
	}
}
