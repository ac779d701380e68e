package config

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
)

// detectInputs returns the first archive, shapefile and table found in dir.
func detectInputs(dir string) (archive, shapefile, table string) {
	first := func(pattern string) string {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		if len(matches) == 0 {
			return ""
		}
		return filepath.Base(matches[0])
	}
	return first("*.zip"), first("*.shp"), first("*.csv")
}

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to petaikm! Let's configure the map inputs.")
	fmt.Println()

	cfg := DefaultConfig()
	if archive, shapefile, table := detectInputs("."); archive != "" || shapefile != "" || table != "" {
		fmt.Println("Detected input files in the current directory.")
		fmt.Println()
		if archive != "" {
			cfg.Archive = archive
		}
		if shapefile != "" {
			cfg.Shapefile = shapefile
		}
		if table != "" {
			cfg.Attributes = table
		}
	}

	// 1. Input files.
	prompts := []struct {
		label  string
		target *string
	}{
		{"Working directory", &cfg.WorkDir},
		{"Input archive (zip)", &cfg.Archive},
		{"Boundary shapefile", &cfg.Shapefile},
		{"Attribute table (csv or xlsx)", &cfg.Attributes},
		{"Identifier column", &cfg.IDColumn},
	}
	for _, p := range prompts {
		prompt := promptui.Prompt{Label: p.label, Default: *p.target}
		v, err := prompt.Run()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.label, err)
		}
		*p.target = v
	}

	// 2. Cluster column mode.
	modePrompt := promptui.Select{
		Label: "How are the three cluster values found?",
		Items: []string{
			"named      : columns CLUSTER 1, CLUSTER 2, CLUSTER 3",
			"custom     : enter three column names",
			"positional : first three columns after the identifier",
		},
	}
	mode, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("column mode: %w", err)
	}
	switch mode {
	case 1:
		colsPrompt := promptui.Prompt{
			Label: "Cluster columns (comma-separated)",
			Validate: func(s string) error {
				if n := len(splitList(s)); n != 3 {
					return fmt.Errorf("need 3 columns, got %d", n)
				}
				return nil
			},
		}
		cols, err := colsPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("cluster columns: %w", err)
		}
		cfg.ClusterColumns = splitList(cols)
	case 2:
		cfg.ClusterColumns = []string{}
	}

	// 3. Server port.
	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 || n > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	port, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(port)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
