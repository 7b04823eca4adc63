package consul

import (
	"context"
	"fmt"
	"math/rand"

	consulapi "github.com/hashicorp/consul/api"
)

// ServiceInstance represents a discovered service instance
type ServiceInstance struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
}

// URL returns the instance's base URL. Instances tagged "https" are reached
// over TLS.
func (i *ServiceInstance) URL() string {
	scheme := "http"
	for _, tag := range i.Tags {
		if tag == "https" {
			scheme = "https"
			break
		}
	}
	return fmt.Sprintf("%s://%s:%d", scheme, i.Address, i.Port)
}

// ServiceDiscovery defines the interface for service discovery
type ServiceDiscovery interface {
	Discover(ctx context.Context, serviceName string) ([]*ServiceInstance, error)
	DiscoverOne(ctx context.Context, serviceName string) (*ServiceInstance, error)
}

// Discover retrieves all healthy instances of a service
func (c *Client) Discover(ctx context.Context, serviceName string) ([]*ServiceInstance, error) {
	opts := (&consulapi.QueryOptions{}).WithContext(ctx)
	services, _, err := c.api.Health().Service(serviceName, "", true, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to discover service %s: %w", serviceName, err)
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("no healthy instances found for service: %s", serviceName)
	}

	instances := make([]*ServiceInstance, 0, len(services))
	for _, entry := range services {
		instance := &ServiceInstance{
			ID:      entry.Service.ID,
			Name:    entry.Service.Service,
			Address: entry.Service.Address,
			Port:    entry.Service.Port,
			Tags:    entry.Service.Tags,
		}

		// Use node address if service address is empty
		if instance.Address == "" && entry.Node != nil {
			instance.Address = entry.Node.Address
		}

		instances = append(instances, instance)
	}

	return instances, nil
}

// DiscoverOne retrieves a single healthy instance using random load balancing
func (c *Client) DiscoverOne(ctx context.Context, serviceName string) (*ServiceInstance, error) {
	instances, err := c.Discover(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	return instances[rand.Intn(len(instances))], nil
}

// Resolver resolves the backend base URL on every call, so a request always
// goes to a currently healthy instance.
type Resolver struct {
	discovery   ServiceDiscovery
	serviceName string
}

// NewResolver creates a resolver for serviceName
func NewResolver(discovery ServiceDiscovery, serviceName string) *Resolver {
	return &Resolver{discovery: discovery, serviceName: serviceName}
}

// BaseURL returns the URL of one healthy backend instance
func (r *Resolver) BaseURL(ctx context.Context) (string, error) {
	instance, err := r.discovery.DiscoverOne(ctx, r.serviceName)
	if err != nil {
		return "", err
	}
	return instance.URL(), nil
}
