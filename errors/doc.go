// Package errors provides unified error handling for registryd.
// It implements structured error types with machine-readable codes and
// HTTP status mapping so the API layer can translate registry failures
// into responses without inspecting error strings.
package errors
