// Package config provides configuration management for the VPN client.
// It handles loading, saving, importing and key provisioning for the
// client's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vpn-client/common"
)

// ClientConfig is the persisted client configuration.
type ClientConfig struct {
	// InterfaceName is the WireGuard interface created on connect.
	InterfaceName string `yaml:"interface_name"`
	// AddressCIDR is the tunnel address assigned to the interface.
	AddressCIDR string `yaml:"address_cidr"`
	// ServerEndpoint is the server's host:port.
	ServerEndpoint string `yaml:"server_endpoint"`
	// ServerPublicKey is the server's base64 public key.
	ServerPublicKey string `yaml:"server_public_key"`
	// KeepaliveSecs is the persistent keepalive interval.
	KeepaliveSecs int `yaml:"keepalive_secs"`
	// SplitTunnel routes only the VPN subnet through the tunnel.
	SplitTunnel bool `yaml:"split_tunnel"`
	// KillSwitch blocks outbound traffic that does not leave through the tunnel.
	KillSwitch bool `yaml:"kill_switch"`
	// ClientPrivateKey is the base64 private key. Empty when the key lives
	// in the system keyring or has not been generated yet.
	ClientPrivateKey string `yaml:"client_private_key,omitempty"`
	// EnrollURL receives the public key before every connect when set.
	EnrollURL string `yaml:"enroll_url,omitempty"`
	// WelcomeURL is opened in a browser once the tunnel is verified.
	WelcomeURL string `yaml:"welcome_url,omitempty"`
	// VPNSubnet overrides the split-tunnel range.
	VPNSubnet string `yaml:"vpn_subnet,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		InterfaceName:  "wg-client",
		AddressCIDR:    "10.8.0.2/32",
		ServerEndpoint: "127.0.0.1:51820",
		KeepaliveSecs:  25,
		SplitTunnel:    false,
		KillSwitch:     false,
		EnrollURL:      "http://127.0.0.1:8080/enroll",
		WelcomeURL:     "http://127.0.0.1:8080/",
	}
}

// Load loads the configuration from path (client.yaml when empty).
// If the file doesn't exist, it writes one with default values and returns them.
func Load(path string) (*ClientConfig, error) {
	path = common.ResolveConfigPath(path)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening configuration: %v: %w", err, common.ErrConfig)
	}
	defer file.Close()

	config, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("error parsing configuration %s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return config, nil
}

// decode strictly decodes a YAML document: unknown fields are rejected.
func decode(r io.Reader) (*ClientConfig, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var config ClientConfig
	if err := decoder.Decode(&config); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document: %w", common.ErrConfig)
		}
		return nil, fmt.Errorf("%v: %w", err, common.ErrConfig)
	}
	return &config, nil
}

// validate fills in a missing interface name and rejects a non-positive
// keepalive. Addresses and keys are checked when a session is built.
func (c *ClientConfig) validate() error {
	if c.InterfaceName == "" {
		c.InterfaceName = DefaultConfig().InterfaceName
	}
	if c.KeepaliveSecs <= 0 {
		return fmt.Errorf("keepalive_secs must be positive, got %d: %w", c.KeepaliveSecs, common.ErrConfig)
	}
	return nil
}

// Save writes the configuration to path (client.yaml when empty).
func (c *ClientConfig) Save(path string) error {
	path = common.ResolveConfigPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("error serializing configuration: %w", err)
	}

	// The file may carry a private key.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}
