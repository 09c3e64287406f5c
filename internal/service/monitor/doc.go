// Package monitor runs the per-frame drowsiness pipeline.
//
// For every detected face the Monitor computes the eye aspect ratio, smooths
// it, steps the subject's state machine and hands the transition to the
// Dispatcher, which drives an Actuator and annotates the frame. State is kept
// per subject and survives frames where the subject is not detected.
package monitor
