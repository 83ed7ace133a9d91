// Package config loads and validates shoebox configuration: repository
// defaults overlaid with an optional TOML file, tilde-expanded and
// normalized before use.
package config
