package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for values that would only fail
// later at runtime.
func (c Config) Validate() error {
	if c.Listen.Rotctld == "" {
		return errors.New("listen.rotctld is required")
	}
	if c.Motor.URL == "" {
		return errors.New("motor.url is required")
	}
	u, err := url.Parse(c.Motor.URL)
	if err != nil {
		return fmt.Errorf("motor.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("motor.url must be http or https, got %q", u.Scheme)
	}
	if c.Motor.Timeout <= 0 {
		return errors.New("motor.timeout must be positive")
	}
	if c.Keeper.Period <= 0 {
		return errors.New("keeper.period must be positive")
	}
	if err := c.Motor.Mount.Validate(); err != nil {
		return fmt.Errorf("motor.mount: %w", err)
	}
	return nil
}
