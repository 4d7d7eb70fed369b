// Package config loads the service configuration from environment variables.
package config
