// Package config loads the service configuration with viper from an optional
// YAML file and VOCANIZER_-prefixed environment variables, then validates it
// with go-playground/validator struct tags.
package config
