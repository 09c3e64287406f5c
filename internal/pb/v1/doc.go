// Package v1 holds the drowsiness.v1.AlertRelay gRPC service.
//
// The service exchanges well-known protobuf types (Struct and Empty), so no
// code generation step is needed. The descriptor and the client/server stubs
// follow the protoc-gen-go-grpc layout; the typed views in messages.go convert
// between Go values and the Struct payloads.
package v1
