package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Archive != "peta_ikm_jambi_files.zip" {
		t.Errorf("expected default archive, got %q", cfg.Archive)
	}
	if cfg.Shapefile != "KABKOTA.shp" {
		t.Errorf("expected default shapefile, got %q", cfg.Shapefile)
	}
	if cfg.IDColumn != "KAB_KOTA" {
		t.Errorf("expected default id_column KAB_KOTA, got %q", cfg.IDColumn)
	}
	if cfg.Map.Zoom != 8 || cfg.Map.Width != 1100 || cfg.Map.Height != 700 {
		t.Errorf("unexpected map defaults: %+v", cfg.Map)
	}
	if cfg.Server.Port != 8501 {
		t.Errorf("expected default port 8501, got %d", cfg.Server.Port)
	}
	if cfg.Positional() {
		t.Error("default should select named cluster columns")
	}
}

func TestDefaultConfigIsolation(t *testing.T) {
	a := DefaultConfig()
	a.ClusterColumns[0] = "CHANGED"
	if DefaultConfig().ClusterColumns[0] != "CLUSTER 1" {
		t.Error("DefaultConfig must not share the cluster column slice")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.petaikm.yml")

	original := DefaultConfig()
	original.WorkDir = "data"
	original.Attributes = "clusters.xlsx"
	original.ClusterColumns = []string{"C1", "C2", "C3"}
	original.SourceCRS = "EPSG:32748"
	original.SimplifyTolerance = 0.001
	original.Map.Zoom = 9
	original.Map.ShowOverview = true
	original.Server.Port = 9000

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.WorkDir != "data" || loaded.Attributes != "clusters.xlsx" {
		t.Errorf("paths: got %q, %q", loaded.WorkDir, loaded.Attributes)
	}
	if len(loaded.ClusterColumns) != 3 || loaded.ClusterColumns[2] != "C3" {
		t.Errorf("cluster_columns: got %v", loaded.ClusterColumns)
	}
	if loaded.SourceCRS != "EPSG:32748" || loaded.SimplifyTolerance != 0.001 {
		t.Errorf("crs %q tolerance %v", loaded.SourceCRS, loaded.SimplifyTolerance)
	}
	if loaded.Map.Zoom != 9 || !loaded.Map.ShowOverview {
		t.Errorf("map: got %+v", loaded.Map)
	}
	if loaded.Server.Port != 9000 {
		t.Errorf("port: got %d", loaded.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Archive != "peta_ikm_jambi_files.zip" {
		t.Errorf("expected default archive, got %q", cfg.Archive)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	if err := os.WriteFile(path, []byte("map:\n  zoom: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Map.Zoom != 10 {
		t.Errorf("zoom: got %d, want 10", cfg.Map.Zoom)
	}
	if cfg.Map.Width != 1100 || cfg.Shapefile != "KABKOTA.shp" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadPositionalColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positional.yml")
	if err := os.WriteFile(path, []byte("cluster_columns: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Positional() {
		t.Errorf("expected positional mode, got %v", cfg.ClusterColumns)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("PETAIKM_MAP_ZOOM", "11")
	t.Setenv("PETAIKM_SERVER_BROWSER_COMMAND", "firefox --new-window")
	t.Setenv("PETAIKM_WORK_DIR", "/srv/peta")
	t.Setenv("PETAIKM_CLUSTER_COLUMNS", "A, B ,C")
	t.Setenv("PETAIKM_EXCLUDE", "backup/**,*.xlsx")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Map.Zoom != 11 {
		t.Errorf("map.zoom override failed: got %d", loaded.Map.Zoom)
	}
	if loaded.Server.BrowserCommand != "firefox --new-window" {
		t.Errorf("server.browser_command override failed: got %q", loaded.Server.BrowserCommand)
	}
	if loaded.WorkDir != "/srv/peta" {
		t.Errorf("work_dir override failed: got %q", loaded.WorkDir)
	}
	if len(loaded.ClusterColumns) != 3 || loaded.ClusterColumns[1] != "B" {
		t.Errorf("cluster_columns override failed: got %v", loaded.ClusterColumns)
	}
	if len(loaded.Exclude) != 2 || loaded.Exclude[0] != "backup/**" {
		t.Errorf("exclude override failed: got %v", loaded.Exclude)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("map: [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}

	cfg.ClusterColumns = nil
	if err := cfg.Validate(); err != nil {
		t.Errorf("positional mode should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty archive", func(c *Config) { c.Archive = "" }},
		{"empty shapefile", func(c *Config) { c.Shapefile = "" }},
		{"empty attributes", func(c *Config) { c.Attributes = "" }},
		{"empty id column", func(c *Config) { c.IDColumn = "" }},
		{"two cluster columns", func(c *Config) { c.ClusterColumns = []string{"A", "B"} }},
		{"blank cluster column", func(c *Config) { c.ClusterColumns = []string{"A", " ", "C"} }},
		{"bad exclude glob", func(c *Config) { c.Exclude = []string{"data/[abc"} }},
		{"unknown crs", func(c *Config) { c.SourceCRS = "EPSG:2154" }},
		{"negative tolerance", func(c *Config) { c.SimplifyTolerance = -1 }},
		{"zoom too low", func(c *Config) { c.Map.Zoom = 0 }},
		{"zoom too high", func(c *Config) { c.Map.Zoom = 19 }},
		{"zero width", func(c *Config) { c.Map.Width = 0 }},
		{"negative height", func(c *Config) { c.Map.Height = -5 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkDir = "data"
	if got := cfg.Path("KABKOTA.shp"); got != filepath.Join("data", "KABKOTA.shp") {
		t.Errorf("Path = %q", got)
	}
	abs := filepath.Join(t.TempDir(), "x.zip")
	if got := cfg.Path(abs); got != abs {
		t.Errorf("absolute Path = %q", got)
	}
}

func TestDetectInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bundle.zip", "KABKOTA.shp", "clusters.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	archive, shapefile, table := detectInputs(dir)
	if archive != "bundle.zip" || shapefile != "KABKOTA.shp" || table != "clusters.csv" {
		t.Errorf("detectInputs = %q, %q, %q", archive, shapefile, table)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,c,")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("splitList = %v", got)
	}
	if got := splitList(""); got == nil || len(got) != 0 {
		t.Errorf("splitList(\"\") = %#v, want empty non-nil", got)
	}
}
