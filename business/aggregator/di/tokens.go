// Package di declares the service tokens the aggregator module registers
// into the application container, so other modules and the transport layer
// can look them up without importing app/infra packages directly.
package di

const (
	// RegistryToken names the *app.Registry service.
	RegistryToken = "aggregator.registry"
)
