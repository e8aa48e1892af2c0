package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "notification-center"

// Keys under which credentials are stored.
const (
	KeyAPIKey      = "backend-api-key"
	KeyAccessToken = "member-access-token"
)

// EnvAPIKey overrides the stored API key when set.
const EnvAPIKey = "NOTIFY_API_KEY"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/notification-center/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("notification-center-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       "Notification center " + key,
		Description: "notification-center credential",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// APIKey returns the backend API key, preferring the environment over the
// keyring.
func APIKey() (string, error) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		return v, nil
	}
	return Get(KeyAPIKey)
}

// AccessToken returns the stored member access token, or "" when none is
// stored.
func AccessToken() string {
	v, err := Get(KeyAccessToken)
	if err != nil {
		return ""
	}
	return v
}
