package consul

import (
	"fmt"
	"time"

	consulapi "github.com/hashicorp/consul/api"
)

// Service describes one running instance to register.
type Service struct {
	Name string
	Host string
	Port int
	Tags []string

	// HealthPath is polled over HTTP by the agent; empty disables the check.
	HealthPath      string
	Interval        time.Duration
	Timeout         time.Duration
	DeregisterAfter time.Duration
}

// ID is unique per host and port so replicas do not overwrite each other.
func (s Service) ID() string {
	return fmt.Sprintf("%s-%s-%d", s.Name, s.Host, s.Port)
}

func (s Service) registration() *consulapi.AgentServiceRegistration {
	reg := &consulapi.AgentServiceRegistration{
		ID:      s.ID(),
		Name:    s.Name,
		Address: s.Host,
		Port:    s.Port,
		Tags:    s.Tags,
	}
	if s.HealthPath == "" {
		return reg
	}

	interval, timeout, deregister := s.Interval, s.Timeout, s.DeregisterAfter
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if deregister <= 0 {
		deregister = time.Minute
	}
	reg.Check = &consulapi.AgentServiceCheck{
		HTTP:                           fmt.Sprintf("http://%s:%d%s", s.Host, s.Port, s.HealthPath),
		Interval:                       interval.String(),
		Timeout:                        timeout.String(),
		DeregisterCriticalServiceAfter: deregister.String(),
	}
	return reg
}

// Register registers the instance with the local agent.
func (c *Client) Register(s Service) error {
	if err := c.api.Agent().ServiceRegister(s.registration()); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	return nil
}

// Deregister removes a service from Consul
func (c *Client) Deregister(serviceID string) error {
	if err := c.api.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	return nil
}
