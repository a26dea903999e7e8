// Package logger provides structured logging for registryd built on zerolog.
//
// A single global logger is initialized from config at startup; components
// derive tagged sub-loggers via WithComponent. Console output is the default
// for development, JSON for production.
package logger
