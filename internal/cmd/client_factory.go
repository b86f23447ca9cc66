package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bullion/bullion-cli/internal/api"
	"github.com/bullion/bullion-cli/internal/config"
	"github.com/bullion/bullion-cli/internal/secrets"
)

// newSecretStore opens the session token store. Tests swap the keyring
// backend through config.SetOpenKeyring instead of replacing this.
var newSecretStore = func() secrets.Store {
	return secrets.NewKeyringStore()
}

type clientFactory struct {
	timeout   time.Duration
	userAgent string
	baseURL   string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:   flags.Timeout,
		userAgent: fmt.Sprintf("bullion-cli/%s", version),
		baseURL:   flags.BaseURL,
	}
}

func (f *clientFactory) client() (*api.Client, config.ClientConfig, error) {
	cfg, err := config.ResolveClientConfig(f.baseURL)
	if err != nil {
		return nil, config.ClientConfig{}, err
	}
	client := api.New(cfg.BaseURL, newSecretStore())
	if f.timeout > 0 {
		client.HTTP = api.NewHTTPClient(f.timeout)
	}
	if f.userAgent != "" {
		client.UserAgent = f.userAgent
	}
	return client, cfg, nil
}

// getClient creates an API client for the resolved base URL.
func getClient() (*api.Client, error) {
	client, _, err := newClientFactory().client()
	return client, err
}

// getAuthedClient creates a client and fails with api.ErrNotLoggedIn when
// no session token is stored. A token store that cannot be read counts as
// no token.
func getAuthedClient(ctx context.Context) (*api.Client, error) {
	client, err := getClient()
	if err != nil {
		return nil, err
	}
	_, ok, err := client.Auth().Token()
	if err != nil {
		slog.WarnContext(ctx, "could not read session token", "error", err)
	}
	if !ok {
		return nil, api.ErrNotLoggedIn
	}
	return client, nil
}
