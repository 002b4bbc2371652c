// Package config loads, normalizes, and validates tagwater configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TAGWATER_VAULT environment
// override. Always obtain settings through this package so downstream code
// receives absolute paths and canonical log settings.
package config
