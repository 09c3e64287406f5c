// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder and an optional
//     rotating JSON file sink,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Monitors, relays and watchers accept a context and extract the logger from
// it, so subject and frame fields travel with the call chain.
package logger
