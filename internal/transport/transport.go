// Package transport defines the interface for the network listeners ttsgen
// serves on.
//
// The HTTP front-end and the gRPC health endpoint both implement Transport so
// the server command can start and drain them uniformly.
package transport

import "context"

// Transport is the interface that every listener must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting connections. It blocks until the context is
	// cancelled or the listener fails.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
