package consul

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// ServiceConfig describes a service announced to the local agent
type ServiceConfig struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string
	Check   *HealthCheck
}

// HealthCheck is an HTTP check run by the agent
type HealthCheck struct {
	HTTP     string
	Interval string
	Timeout  string
	// DeregisterAfter removes the service once the check stays critical
	// this long. Empty keeps it registered.
	DeregisterAfter string
}

// WebService describes the web front end listening on host:port. Its health
// check polls GET /health.
func WebService(name, host string, port int) *ServiceConfig {
	return &ServiceConfig{
		ID:      fmt.Sprintf("%s-%s-%d", name, host, port),
		Name:    name,
		Address: host,
		Port:    port,
		Tags:    []string{"travelsnap", "web"},
		Check: &HealthCheck{
			HTTP:            fmt.Sprintf("http://%s:%d/health", host, port),
			Interval:        "10s",
			Timeout:         "3s",
			DeregisterAfter: "1m",
		},
	}
}

func (cfg *ServiceConfig) registration() *consulapi.AgentServiceRegistration {
	reg := &consulapi.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Address: cfg.Address,
		Port:    cfg.Port,
		Tags:    cfg.Tags,
	}
	if cfg.Check != nil {
		reg.Check = &consulapi.AgentServiceCheck{
			HTTP:                           cfg.Check.HTTP,
			Interval:                       cfg.Check.Interval,
			Timeout:                        cfg.Check.Timeout,
			DeregisterCriticalServiceAfter: cfg.Check.DeregisterAfter,
		}
	}
	return reg
}

// Register announces cfg to the local agent
func (c *Client) Register(cfg *ServiceConfig) error {
	if err := c.api.Agent().ServiceRegister(cfg.registration()); err != nil {
		return fmt.Errorf("consul: failed to register %s: %w", cfg.ID, err)
	}
	return nil
}

// Deregister removes the service with serviceID from the local agent
func (c *Client) Deregister(serviceID string) error {
	if err := c.api.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("consul: failed to deregister %s: %w", serviceID, err)
	}
	return nil
}
