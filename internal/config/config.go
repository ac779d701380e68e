package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/peta-ikm/internal/geo"
	"github.com/ziadkadry99/peta-ikm/internal/walker"
)

// EnvPrefix prefixes environment overrides: PETAIKM_MAP_ZOOM sets map.zoom.
const EnvPrefix = "PETAIKM_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PETAIKM_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps PETAIKM_SERVER_BROWSER_COMMAND to server.browser_command.
// Only the map and server sections nest; everything else is top level.
// Lists (cluster columns, exclude) are given comma separated.
func envKey(name, value string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	for _, section := range []string{"map_", "server_"} {
		if strings.HasPrefix(key, section) {
			key = strings.TrimSuffix(section, "_") + "." + strings.TrimPrefix(key, section)
			break
		}
	}
	if key == "cluster_columns" || key == "exclude" {
		return key, splitList(value)
	}
	return key, value
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir is required")
	}
	if c.Archive == "" {
		return fmt.Errorf("archive is required")
	}
	if c.Shapefile == "" {
		return fmt.Errorf("shapefile is required")
	}
	if c.Attributes == "" {
		return fmt.Errorf("attributes is required")
	}
	if c.IDColumn == "" {
		return fmt.Errorf("id_column is required")
	}

	if err := walker.ValidatePatterns(c.Exclude); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}

	if n := len(c.ClusterColumns); n != 0 && n != 3 {
		return fmt.Errorf("cluster_columns must name exactly 3 columns or be empty for positional mode, got %d", n)
	}
	for _, col := range c.ClusterColumns {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("cluster_columns must not contain blank names")
		}
	}

	if c.SourceCRS != "" {
		if _, err := geo.ParseCRS(c.SourceCRS); err != nil {
			return fmt.Errorf("invalid source_crs: %w", err)
		}
	}
	if c.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify_tolerance must be non-negative")
	}

	if c.Map.Zoom < 1 || c.Map.Zoom > 18 {
		return fmt.Errorf("map.zoom must be between 1 and 18, got %d", c.Map.Zoom)
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("map.width and map.height must be positive")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}

	return nil
}

// Path resolves name against the work directory. Absolute names are
// returned unchanged.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.WorkDir, name)
}

// Positional reports whether cluster values are taken by column position.
func (c *Config) Positional() bool {
	return len(c.ClusterColumns) == 0
}

// splitList splits a comma-separated string and trims whitespace. Empty
// items are dropped.
func splitList(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
