package secrets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"threadlink/clients"
)

// EnvSecretsProvider resolves named secrets from environment variables and
// caches them for the process lifetime. The identifiers configured in
// config (SLACK_SIGNING_SECRET_ID etc.) name the variable holding the
// secret value, keeping callers independent of where secrets actually live.
type EnvSecretsProvider struct {
	mu    sync.RWMutex
	cache map[string]string
}

func NewEnvSecretsProvider() clients.SecretsProvider {
	return &EnvSecretsProvider{
		cache: make(map[string]string),
	}
}

func (p *EnvSecretsProvider) GetSecret(_ context.Context, secretID string) (string, error) {
	if secretID == "" {
		return "", fmt.Errorf("secret id cannot be empty")
	}

	p.mu.RLock()
	value, ok := p.cache[secretID]
	p.mu.RUnlock()
	if ok {
		return value, nil
	}

	value = os.Getenv(secretID)
	if value == "" {
		return "", fmt.Errorf("secret %s is not set", secretID)
	}

	p.mu.Lock()
	p.cache[secretID] = value
	p.mu.Unlock()

	return value, nil
}
