package config

import (
	"errors"
	"fmt"

	"github.com/yllada/vpn-client/wgkey"
)

// ErrSecretNotFound is returned by a SecretStore that holds no key for an account.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore keeps private keys outside the config file.
type SecretStore interface {
	Get(account string) (string, error)
	Store(account, secret string) error
}

// KeyPair is the client's base64 key pair.
type KeyPair struct {
	Private string
	Public  string
	// Generated reports whether the private key was created by this call.
	Generated bool
}

// EnsureOptions controls where EnsureKeys looks for and stores the private key.
type EnsureOptions struct {
	// Store is consulted when the config carries no private key.
	Store SecretStore
	// UseStore writes a newly generated key to Store instead of the file.
	UseStore bool
}

// EnsureKeys makes sure cfg has a usable private key and returns the pair.
//
// Resolution order: the key in cfg, then the key in opts.Store under the
// interface name, then a freshly generated key persisted to path (or to the
// store when opts.UseStore is set). On return cfg.ClientPrivateKey holds the
// key in memory; it is only written to disk when it was generated for the file.
func EnsureKeys(cfg *ClientConfig, path string, opts EnsureOptions) (*KeyPair, error) {
	if cfg.ClientPrivateKey != "" {
		return pairFor(cfg.ClientPrivateKey, false)
	}

	if opts.Store != nil {
		secret, err := opts.Store.Get(cfg.InterfaceName)
		switch {
		case err == nil:
			pair, err := pairFor(secret, false)
			if err != nil {
				return nil, fmt.Errorf("stored key for %s: %w", cfg.InterfaceName, err)
			}
			cfg.ClientPrivateKey = pair.Private
			return pair, nil
		case !errors.Is(err, ErrSecretNotFound):
			return nil, fmt.Errorf("reading stored key for %s: %w", cfg.InterfaceName, err)
		}
	}

	priv, err := wgkey.GeneratePrivate()
	if err != nil {
		return nil, err
	}
	pair, err := pairFor(wgkey.Encode(priv), true)
	if err != nil {
		return nil, err
	}

	if opts.UseStore && opts.Store != nil {
		if err := opts.Store.Store(cfg.InterfaceName, pair.Private); err != nil {
			return nil, fmt.Errorf("storing key for %s: %w", cfg.InterfaceName, err)
		}
		cfg.ClientPrivateKey = pair.Private
		return pair, nil
	}

	cfg.ClientPrivateKey = pair.Private
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return pair, nil
}

// PublicKey derives the public key of the configured private key.
func (c *ClientConfig) PublicKey() (string, error) {
	if c.ClientPrivateKey == "" {
		return "", errors.New("missing client private key")
	}
	return wgkey.PublicFromPrivateBase64(c.ClientPrivateKey)
}

func pairFor(private string, generated bool) (*KeyPair, error) {
	pub, err := wgkey.PublicFromPrivateBase64(private)
	if err != nil {
		return nil, fmt.Errorf("client private key: %w", err)
	}
	return &KeyPair{Private: private, Public: pub, Generated: generated}, nil
}
