// Package watcher polls the alert relay and sounds a local cue while any
// monitored subject is alarming.
package watcher
