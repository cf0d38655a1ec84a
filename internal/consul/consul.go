// Package consul resolves the catalog feed host through service discovery,
// for deployments where the feed is served by another registered service
// rather than a fixed URL.
package consul

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

func NewClient() (*consulapi.Client, error) {
	client, err := consulapi.NewClient(consulapi.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return client, nil
}

// GetServiceAddress returns the address and port of a healthy instance of the
// named service.
func GetServiceAddress(client *consulapi.Client, serviceName string) (string, int, error) {
	services, _, err := client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query consul for %q: %w", serviceName, err)
	}
	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of %q registered", serviceName)
	}
	svc := services[0].Service
	addr := svc.Address
	if addr == "" {
		addr = services[0].Node.Address
	}
	return addr, svc.Port, nil
}
