package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration. When path
// is empty the default candidates are tried in order; a missing file is not
// an error and leaves the built-in defaults in place.
func LoadAppConfig(path string) error {
	paths := []string{"config.yml", "./configs/config.yml"}
	if path != "" {
		paths = []string{path}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		if path == "" && os.IsNotExist(err) {
			Config = AppConfig{}
			applyDefaults()
			return nil
		}
		return err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return err
	}
	if err := v.Struct(cfg.Simulation); err != nil {
		return err
	}
	Config = cfg
	applyDefaults()
	return nil
}

func applyDefaults() {
	if Config.Server.Port == 0 {
		Config.Server.Port = 8080
	}
	if Config.Simulation.DurationMinutes == 0 {
		Config.Simulation.DurationMinutes = 240
	}
	if Config.Simulation.StepSeconds == 0 {
		Config.Simulation.StepSeconds = 60
	}
	if Config.Simulation.Scenario == "" {
		Config.Simulation.Scenario = "default"
	}
}
