package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateInstruments(); err != nil {
		return err
	}
	if err := c.validateSEVIRI(); err != nil {
		return err
	}
	if err := c.validateAnnounce(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InputDir == "" {
		return errors.New("paths.input_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validateInstruments() error {
	if !c.SEVIRI.Enabled && !c.AVHRR.Enabled {
		return errors.New("at least one instrument must be enabled (seviri.enabled or avhrr.enabled)")
	}
	return nil
}

func (c *Config) validateSEVIRI() error {
	switch c.SEVIRI.CalibMode {
	case "meirink", "nominal":
		return nil
	default:
		return fmt.Errorf("seviri.calib_mode: unsupported value %q (use \"meirink\" or \"nominal\")", c.SEVIRI.CalibMode)
	}
}

func (c *Config) validateAnnounce() error {
	if !c.Announce.Enabled {
		return nil
	}
	if len(c.Announce.Brokers) == 0 {
		return errors.New("announce.brokers must be set when announce.enabled is true")
	}
	if c.Announce.Topic == "" {
		return errors.New("announce.topic must be set when announce.enabled is true")
	}
	return nil
}
