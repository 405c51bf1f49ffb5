package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
)

// Secrets are the credentials the service can pull from Vault.
// Empty fields mean the secret was not stored there. FCMCredentials holds a
// Firebase service account key in JSON form.
type Secrets struct {
	StripeSecretKey string
	FCMCredentials  string
	DatabaseURL     string
}

type SecretManager struct {
	client *api.Client
	mount  string
	path   string
}

// NewSecretManager reads secrets from a KV v2 engine mounted at mount, under path.
func NewSecretManager(address, token, mount, path string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	if mount == "" {
		mount = "secret"
	}
	return &SecretManager{client: client, mount: mount, path: path}, nil
}

func (sm *SecretManager) Load(ctx context.Context) (*Secrets, error) {
	secret, err := sm.client.KVv2(sm.mount).Get(ctx, sm.path)
	if err != nil {
		return nil, fmt.Errorf("vault: read %s/%s: %w", sm.mount, sm.path, err)
	}

	return &Secrets{
		StripeSecretKey: stringValue(secret.Data, "stripe_secret_key"),
		FCMCredentials:  stringValue(secret.Data, "fcm_credentials"),
		DatabaseURL:     stringValue(secret.Data, "database_url"),
	}, nil
}

func stringValue(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}
