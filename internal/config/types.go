package config

// Config is the top-level petaikm configuration, corresponding to .petaikm.yml.
type Config struct {
	WorkDir           string       `yaml:"work_dir" koanf:"work_dir"`
	Archive           string       `yaml:"archive" koanf:"archive"`
	Shapefile         string       `yaml:"shapefile" koanf:"shapefile"`
	Attributes        string       `yaml:"attributes" koanf:"attributes"`
	Exclude           []string     `yaml:"exclude" koanf:"exclude"` // globs ignored when locating and listing inputs
	IDColumn          string       `yaml:"id_column" koanf:"id_column"`
	ClusterColumns    []string     `yaml:"cluster_columns" koanf:"cluster_columns"`
	SourceCRS         string       `yaml:"source_crs" koanf:"source_crs"`
	SimplifyTolerance float64      `yaml:"simplify_tolerance" koanf:"simplify_tolerance"`
	Map               MapConfig    `yaml:"map" koanf:"map"`
	Server            ServerConfig `yaml:"server" koanf:"server"`
}

// MapConfig holds the presentation settings of the rendered map.
type MapConfig struct {
	Title        string `yaml:"title" koanf:"title"`
	Zoom         int    `yaml:"zoom" koanf:"zoom"`
	Tiles        string `yaml:"tiles" koanf:"tiles"`
	Attribution  string `yaml:"attribution" koanf:"attribution"`
	Width        int    `yaml:"width" koanf:"width"`
	Height       int    `yaml:"height" koanf:"height"`
	Notes        string `yaml:"notes" koanf:"notes"`
	ShowOverview bool   `yaml:"show_overview" koanf:"show_overview"`
}

// ServerConfig holds settings for the display server.
type ServerConfig struct {
	Port           int    `yaml:"port" koanf:"port"`
	Open           bool   `yaml:"open" koanf:"open"`
	BrowserCommand string `yaml:"browser_command" koanf:"browser_command"`
}
