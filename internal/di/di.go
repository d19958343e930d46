// Package di provides a minimal dependency-injection container used to wire
// bounded-context modules into the application container at startup.
package di

import "fmt"

// ServiceRegistry is the read side of the container: modules and transport
// layers look services up by the token they were registered under.
type ServiceRegistry interface {
	Get(token string) (any, bool)
	MustGet(token string) any
}

// Container is the write side of the container: modules register the
// services they own during RegisterServices.
type Container interface {
	ServiceRegistry
	Register(token string, service any)
}

// container is the default in-memory Container implementation. It is not
// safe for concurrent registration, matching the teacher's usage: all
// registration happens sequentially at startup, before any module runs.
type container struct {
	services map[string]any
}

// NewContainer creates an empty Container.
func NewContainer() Container {
	return &container{services: make(map[string]any)}
}

func (c *container) Register(token string, service any) {
	c.services[token] = service
}

func (c *container) Get(token string) (any, bool) {
	s, ok := c.services[token]
	return s, ok
}

func (c *container) MustGet(token string) any {
	s, ok := c.services[token]
	if !ok {
		panic(fmt.Sprintf("di: no service registered for token %q", token))
	}
	return s
}

// RegisterToken calls factory immediately with c and registers the value it
// returns under token; construction is not deferred. Modules call this from
// RegisterServices, so a factory's own dependencies must already be
// registered when it runs.
func RegisterToken[T any](c Container, token string, factory func(ServiceRegistry) T) {
	c.Register(token, factory(c))
}

// Resolve fetches and type-asserts a service registered under token. It
// panics if the token is missing or holds the wrong type, since a missing
// wire-up is a programming error, not a runtime condition to recover from.
func Resolve[T any](r ServiceRegistry, token string) T {
	v := r.MustGet(token)
	typed, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q is %T, not %T", token, v, typed))
	}
	return typed
}
