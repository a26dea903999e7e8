// Package component defines the lifecycle contract for registryd's
// long-running parts (the registry prune loop, the HTTP server) and a small
// registry that starts them in order and stops them in reverse.
package component
