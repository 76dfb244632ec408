package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/vault/api"

	"civicreport/internal/config"
)

// Client reads deployment secrets from a Vault KV v2 mount. It is an
// optional secret source: when Vault is disabled the configuration falls
// back to environment variables.
type Client struct {
	client *api.Client
	mount  string
	path   string
}

func NewClient(cfg *config.VaultConfig) (*Client, error) {
	apiConfig := api.DefaultConfig()
	apiConfig.Address = cfg.Address
	apiConfig.Timeout = 10 * time.Second

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &Client{client: client, mount: cfg.Mount, path: cfg.SecretPath}, nil
}

// Secrets loads every key/value pair of the configured secret.
func (c *Client) Secrets(ctx context.Context) (map[string]string, error) {
	secret, err := c.client.KVv2(c.mount).Get(ctx, c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret %s/%s: %w", c.mount, c.path, err)
	}

	out := make(map[string]string, len(secret.Data))
	for key, value := range secret.Data {
		if s, ok := value.(string); ok {
			out[key] = s
		}
	}
	return out, nil
}

// HealthCheck verifies the Vault server is reachable and unsealed.
func (c *Client) HealthCheck(ctx context.Context) error {
	health, err := c.client.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	if health.Sealed {
		return fmt.Errorf("vault is sealed")
	}
	return nil
}
