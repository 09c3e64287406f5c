// Package alert implements the gRPC transport for the alert relay.
//
// It adapts domain types to protobuf messages and exposes a server that calls
// into a provided business-service interface.
package alert
