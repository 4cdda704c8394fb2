// Package file provides a TOML-backed configuration source with optional
// live reload via filesystem notifications.
package file
