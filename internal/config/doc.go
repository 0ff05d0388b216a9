// Package config loads runtime settings from the environment (optionally
// seeded from a .env file) and demo scenarios from YAML.
package config
