// Package relay runs the alert relay gRPC server.
//
// Monitors push the cue state of every subject they track; watchers list the
// alerts to drive their own cues. States are persisted to a JSON file or Redis.
package relay
