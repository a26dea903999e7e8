package registry

import (
	"fmt"
	"time"
)

// Entry represents one live instance of a service: a single registered
// address+port under one exact (name, version) pair. An entry is owned by
// exactly one cluster.
type Entry struct {
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Address  string    `json:"address"`
	Port     int       `json:"port"`
	LastSeen time.Time `json:"last_seen"`
}

// Hash returns the entry's display form: "<address>:<port>/<name>/v<version>".
func (e Entry) Hash() string {
	return fmt.Sprintf("%s:%d/%s/v%s", e.Address, e.Port, e.Name, e.Version)
}

// sameEndpoint reports whether the entry occupies the given address+port.
// Uniqueness within a cluster is keyed on this pair.
func (e Entry) sameEndpoint(address string, port int) bool {
	return e.Address == address && e.Port == port
}
