// Package config loads heromatch settings from YAML, the environment and flags.
package config
