package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/w1xm/ptz_interface/rotator"
)

// Config is the process configuration, loaded once at startup and
// passed into each component's constructor.
type Config struct {
	Listen ListenConfig `yaml:"listen"`
	Motor  MotorConfig  `yaml:"motor"`
	Keeper KeeperConfig `yaml:"keeper"`
}

// ListenConfig holds the listen addresses for the two frontends.
type ListenConfig struct {
	// Rotctld is the address of the rotctld TCP listener.
	Rotctld string `yaml:"rotctld"`
	// HTTP is the address of the status/metrics HTTP server. Empty
	// disables it.
	HTTP string `yaml:"http"`
}

// MotorConfig describes the pan/tilt head and its mounting.
type MotorConfig struct {
	// URL is the base URL of the head, e.g. "http://10.1.203.213".
	URL string `yaml:"url"`
	// Timeout bounds each HTTP exchange with the head.
	Timeout Duration `yaml:"timeout"`
	// Mount maps the head's axes onto az/el.
	Mount rotator.Mount `yaml:"mount"`
}

// KeeperConfig tunes the position keeper.
type KeeperConfig struct {
	// Period is the minimum time between control loop iterations.
	Period Duration `yaml:"period"`
}

// Duration is a time.Duration that unmarshals from strings like
// "200ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration defaults applied before the file
// is read.
func Default() Config {
	return Config{
		Listen: ListenConfig{
			Rotctld: "127.0.0.1:4533",
			HTTP:    "127.0.0.1:8502",
		},
		Motor: MotorConfig{
			Timeout: Duration(2 * time.Second),
			Mount: rotator.Mount{
				Azimuth:   rotator.Axis{Dir: 1},
				Elevation: rotator.Axis{Dir: 1},
			},
		},
		Keeper: KeeperConfig{
			Period: Duration(200 * time.Millisecond),
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
