// Package vault overlays secrets from HashiCorp Vault onto the file config,
// so credentials never live in config.yaml.
package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

// read fetches one field from a KV v2 secret.
func (sm *SecretManager) read(path, field string) (string, error) {
	secret, err := sm.client.Logical().Read(path)
	if err != nil {
		return "", err
	}
	if secret == nil {
		return "", fmt.Errorf("vault: secret %s not found", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: secret %s has no data", path)
	}
	value, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("vault: secret %s has no %s field", path, field)
	}
	return value, nil
}

func (sm *SecretManager) GetDatabaseURL() (string, error) {
	return sm.read("secret/data/database", "connection_string")
}

func (sm *SecretManager) GetAzureSpeechKey() (string, error) {
	return sm.read("secret/data/azure-speech", "key")
}

func (sm *SecretManager) GetAzureOpenAIKey() (string, error) {
	return sm.read("secret/data/azure-openai", "key")
}

func (sm *SecretManager) GetWhatsAppAccessToken() (string, error) {
	return sm.read("secret/data/whatsapp", "access_token")
}

func (sm *SecretManager) GetSendGridKey() (string, error) {
	return sm.read("secret/data/sendgrid", "api_key")
}

func (sm *SecretManager) GetAdminJWTSecret() (string, error) {
	return sm.read("secret/data/admin", "jwt_secret")
}
