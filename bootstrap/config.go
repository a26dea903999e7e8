package bootstrap

import (
	"github.com/kbukum/registryd/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig automatically satisfies this
// interface via promoted methods, as long as it overrides ApplyDefaults and
// Validate when it adds its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
