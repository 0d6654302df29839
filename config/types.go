package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"omitempty,gt=0"`
}

// SimulationConfig contains default simulation run parameters. CLI flags
// and API request fields override these per run.
type SimulationConfig struct {
	DurationMinutes int    `yaml:"durationMinutes" validate:"gte=0"`
	StepSeconds     int    `yaml:"stepSeconds" validate:"gte=0"`
	Seed            int64  `yaml:"seed"`
	Scenario        string `yaml:"scenario"`
}

// InputConfig contains default input file locations
type InputConfig struct {
	TimetablePath string `yaml:"timetablePath"`
	IncidentsPath string `yaml:"incidentsPath"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server     ServerConfig     `yaml:"server" validate:"required"`
	Simulation SimulationConfig `yaml:"simulation"`
	Input      InputConfig      `yaml:"input"`
}
