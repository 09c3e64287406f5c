// Package actuator combines the alert cue outputs.
//
// Concrete actuators live in the subpackages: logcue writes the cue to the
// log, sound plays an audio file, mqtt publishes an event and relay forwards
// the cue to the alert relay.
package actuator
