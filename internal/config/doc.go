// Package config loads and saves the schedly YAML configuration.
package config
