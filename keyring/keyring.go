// Package keyring stores the client private key in the system keyring
// (Secret Service, macOS Keychain, Windows Credential Manager).
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/yllada/vpn-client/common"
	"github.com/yllada/vpn-client/config"
)

// Common errors returned by keyring operations.
var (
	ErrNotFound    = config.ErrSecretNotFound
	ErrUnavailable = errors.New("keyring service unavailable")
)

// Store is a config.SecretStore backed by the system keyring. Accounts are
// interface names.
type Store struct {
	service string
}

// New returns a Store using the application's keyring service name.
func New() *Store {
	return &Store{service: common.KeyringService}
}

// Get retrieves the private key stored for account.
func (s *Store) Get(account string) (string, error) {
	if account == "" {
		return "", errors.New("account cannot be empty")
	}

	secret, err := keyring.Get(s.service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return secret, nil
}

// Store saves a private key for account.
func (s *Store) Store(account, secret string) error {
	if account == "" {
		return errors.New("account cannot be empty")
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}

	if err := keyring.Set(s.service, account, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
