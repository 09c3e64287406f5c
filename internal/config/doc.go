// Package config defines the settings shared by the drowsiness binaries and
// provides helpers to load, validate and save them in YAML format.
//
// Validate fills defaults for every section, so a partially written file (or
// no file at all for the monitor) yields the reference detection parameters.
// DROWSY_* environment variables, optionally read from a .env file, override
// selected fields after the file is parsed.
package config
