// Package mqtt publishes alert cue events to an MQTT broker.
//
// Each start and stop command becomes one JSON event on the configured topic,
// so dashboards or vehicle controllers can react to drowsiness alerts.
package mqtt
