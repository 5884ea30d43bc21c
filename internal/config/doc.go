// Package config provides configuration structures and utilities for mathglossary.
// It defines the harvest settings (wiki endpoint, traversal limits, denylists),
// the export and report preferences, and the YAML file that overrides them.
package config
