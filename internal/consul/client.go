// Package consul registers the api and notifier with a Consul agent so their
// /health endpoints are checked and the instances are discoverable.
package consul

import (
	consulapi "github.com/hashicorp/consul/api"

	"instaclone/internal/config"
)

// Client wraps the Consul API client
type Client struct {
	api *consulapi.Client
}

// NewClient connects to the agent at cfg.Addr, sending cfg.Token when set.
func NewClient(cfg config.ConsulConfig) (*Client, error) {
	apiCfg := consulapi.DefaultConfig()
	apiCfg.Address = cfg.Addr
	if cfg.Token != "" {
		apiCfg.Token = cfg.Token
	}

	client, err := consulapi.NewClient(apiCfg)
	if err != nil {
		return nil, err
	}
	return &Client{api: client}, nil
}
