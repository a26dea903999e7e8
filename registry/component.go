package registry

import (
	"context"
	"fmt"

	"github.com/kbukum/registryd/component"
	"github.com/kbukum/registryd/logger"
	"github.com/kbukum/registryd/observability"
)

// Component wraps a Registry and implements component.Component so the
// prune loop is started and stopped with the rest of the process.
type Component struct {
	registry *Registry
	cfg      Config
	log      *logger.Logger
}

// NewComponent creates a registry Component. metrics may be nil.
func NewComponent(cfg Config, log *logger.Logger, metrics *observability.Metrics) *Component {
	cfg.ApplyDefaults()
	return &Component{
		registry: New(cfg, log, metrics),
		cfg:      cfg,
		log:      log.WithComponent("registry"),
	}
}

var _ component.Component = (*Component)(nil)

// Name returns the component name.
func (c *Component) Name() string { return "registry" }

// Registry returns the underlying Registry.
func (c *Component) Registry() *Registry { return c.registry }

// Start validates the configuration and launches the prune loop.
func (c *Component) Start(ctx context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("registry config: %w", err)
	}
	c.registry.StartPruning()
	return nil
}

// Stop halts the prune loop. Registry state is released with the process.
func (c *Component) Stop(ctx context.Context) error {
	c.registry.StopPruning()
	return nil
}

// Health reports the registry's current population.
func (c *Component) Health(ctx context.Context) component.Health {
	clusters, entries := c.registry.Stats()
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d clusters, %d entries", clusters, entries),
	}
}

// Describe returns infrastructure summary info for the startup log.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name: "Service Registry",
		Type: "registry",
		Details: fmt.Sprintf("prune_interval=%s address_family=%s",
			c.cfg.Interval(), c.cfg.AddressFamily),
	}
}
