package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yllada/vpn-client/common"
)

// Import merges server settings from importPath into the config at path and
// saves the result.
//
// A YAML document contributes server_endpoint and server_public_key. A
// wg-quick file (.conf, or text starting with an [Interface]/[Peer] section)
// contributes the first peer's Endpoint and PublicKey, and also the
// interface Address, PrivateKey and PersistentKeepalive when present.
func Import(path, importPath string) (*ClientConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(importPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", importPath, err)
	}

	if isWGQuick(importPath, data) {
		err = cfg.mergeWGQuick(data)
	} else {
		err = cfg.mergeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", importPath, err)
	}

	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isWGQuick(path string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".conf") {
		return true
	}
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(trimmed, []byte("[Interface]")) || bytes.HasPrefix(trimmed, []byte("[Peer]"))
}

func (c *ClientConfig) mergeYAML(data []byte) error {
	imported, err := decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if imported.ServerEndpoint != "" {
		c.ServerEndpoint = imported.ServerEndpoint
	}
	if imported.ServerPublicKey != "" {
		c.ServerPublicKey = imported.ServerPublicKey
	}
	return nil
}

func (c *ClientConfig) mergeWGQuick(data []byte) error {
	parsed, err := parseWGQuick(string(data))
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrConfig)
	}

	peer := parsed.Peers[0]
	c.ServerEndpoint = peer.Endpoint
	c.ServerPublicKey = peer.PublicKey
	if secs, err := strconv.Atoi(peer.PersistentKeepalive); err == nil && secs > 0 {
		c.KeepaliveSecs = secs
	}
	if len(parsed.Addresses) > 0 {
		c.AddressCIDR = parsed.Addresses[0]
	}
	if parsed.PrivateKey != "" {
		c.ClientPrivateKey = parsed.PrivateKey
	}
	return nil
}
