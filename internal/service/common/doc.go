// Package common holds helpers shared by several services.
//
// It provides a lightweight gRPC client wrapper for the alert relay with
// timeouts and a utility to detect the current host and user.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
