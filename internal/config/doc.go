// Package config loads, normalizes, and validates videomanager configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDEOMANAGER_DATA_DIR. The Config type centralizes every knob the catalog,
// the version registry, and the CLI need so paths are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
