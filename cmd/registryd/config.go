package main

import (
	"github.com/kbukum/registryd/config"
	"github.com/kbukum/registryd/observability"
	"github.com/kbukum/registryd/registry"
	"github.com/kbukum/registryd/server"
	"github.com/kbukum/registryd/validation"
)

// appConfig is the full configuration for the registryd process.
type appConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Registry      registry.Config      `yaml:"registry" mapstructure:"registry"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies defaults for every section.
func (c *appConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Registry.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *appConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Registry.Validate(); err != nil {
		return err
	}
	return c.Observability.Validate()
}
