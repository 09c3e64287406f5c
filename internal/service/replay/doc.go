// Package replay feeds a recorded trace through the drowsiness monitor.
//
// It wires the configured actuators, optionally paces frames in real time and
// writes annotated images when an output directory is given.
package replay
