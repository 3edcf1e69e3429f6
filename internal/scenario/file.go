package scenario

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a scenario file, filling unset fields from the custom
// preset's defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := presets[Custom]
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Scenario == "" {
		cfg.Scenario = Custom
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
