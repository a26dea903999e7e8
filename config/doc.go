// Package config provides configuration loading and validation.
//
// Configuration is loaded with Viper from a config.yml found in standard
// locations (cmd/<service>/, config/, or the working directory), then
// overridden by environment variables, including those from a .env file
// loaded via godotenv. Environment variables map onto nested keys by
// underscore splitting (e.g. SERVER_PORT -> server.port).
//
//	var cfg myConfig
//	err := config.LoadConfig("registryd", &cfg)
package config
