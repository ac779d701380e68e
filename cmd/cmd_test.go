package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/peta-ikm/internal/archive"
	"github.com/ziadkadry99/peta-ikm/internal/config"
	"github.com/ziadkadry99/peta-ikm/internal/dataset/datasettest"
	"github.com/ziadkadry99/peta-ikm/internal/pipeline"
)

// writeConfig bundles the fixture archive in a temp dir and points a
// config file at it.
func writeConfig(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	datasettest.Bundle(t, dir, datasettest.Regions, datasettest.Clusters)
	cfg := config.DefaultConfig()
	cfg.WorkDir = dir
	path = filepath.Join(dir, config.DefaultFile)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return dir, path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := Execute()
	return buf.String(), err
}

func TestInspect(t *testing.T) {
	_, path := writeConfig(t)

	out, err := execute(t, "inspect", "--config", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, s := range []string{"sidecars [dbf prj shx] (ok)", "Joined:     2 regions", "Dropped:    1", `"BATANG HARI"`} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestExport(t *testing.T) {
	dir, path := writeConfig(t)
	target := filepath.Join(dir, "map.html")

	if _, err := execute(t, "export", "--config", path, "-o", target); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "Kota Jambi") {
		t.Error("exported page missing region")
	}
}

func TestExport_MissingArchive(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.WorkDir = dir
	path := filepath.Join(dir, config.DefaultFile)
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "export", "--config", path, "-o", filepath.Join(dir, "map.html"))
	var missing *archive.MissingArchiveError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingArchiveError, got %v", err)
	}
	if n := strings.Count(out, pipeline.MissingArchiveMessage); n != 1 {
		t.Errorf("banner printed %d times, want once:\n%s", n, out)
	}
	if strings.Contains(out, "Error:") {
		t.Errorf("failure reported twice:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "map.html")); !os.IsNotExist(err) {
		t.Error("no page should be written when the run fails")
	}
}

func TestExecute_PlainErrors(t *testing.T) {
	out, err := execute(t, "inspect", "--config", filepath.Join(t.TempDir(), "missing-dir", "x.yml"), "--no-such-flag")
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if n := strings.Count(out, "Error:"); n != 1 {
		t.Errorf("got %d error lines, want 1:\n%s", n, out)
	}
}
