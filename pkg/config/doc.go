// Package config loads and generates the runner's INI configuration file.
//
// The file holds the ordered rule sections [include], [exclude] and
// [exclude-if], one pattern per line, and an optional [runner] section of
// key = value settings. Pattern sections are read verbatim, so patterns may
// contain "=", ":" and "#".
package config
