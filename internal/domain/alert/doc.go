// Package alert contains the domain types kept by the alert relay.
//
// It defines Source (the machine and user that pushed a cue) and State (the
// relayed alert of one monitored subject) with Clone helpers to avoid leaking
// internal references.
package alert
