package registry

import (
	"fmt"
	"time"
)

// Address families understood by the registry.
const (
	FamilyIPv4 = "ipv4"
	FamilyIPv6 = "ipv6"
)

// Config holds registry configuration.
type Config struct {
	// PruneInterval is the health-check cycle length in seconds. An entry
	// survives one full interval of silence before removal.
	PruneInterval int `yaml:"prune_interval" mapstructure:"prune_interval" validate:"omitempty,min=1"`

	// AddressFamily selects how requester addresses are normalized.
	// With "ipv4", IPv6-mapped IPv4 addresses ("::ffff:10.0.0.1") have
	// their prefix stripped before storage.
	AddressFamily string `yaml:"address_family" mapstructure:"address_family" validate:"omitempty,oneof=ipv4 ipv6"`
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.PruneInterval == 0 {
		c.PruneInterval = 30
	}
	if c.AddressFamily == "" {
		c.AddressFamily = FamilyIPv4
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.PruneInterval <= 0 {
		return fmt.Errorf("registry.prune_interval must be > 0 (got: %d)", c.PruneInterval)
	}
	switch c.AddressFamily {
	case FamilyIPv4, FamilyIPv6:
	default:
		return fmt.Errorf("registry.address_family must be %q or %q (got: %q)",
			FamilyIPv4, FamilyIPv6, c.AddressFamily)
	}
	return nil
}

// Interval returns the prune interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.PruneInterval) * time.Second
}
