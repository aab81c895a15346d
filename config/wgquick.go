package config

import (
	"bufio"
	"fmt"
	"strings"
)

// wgQuickConfig holds the fields of a wg-quick file that map onto ClientConfig.
type wgQuickConfig struct {
	PrivateKey string
	Addresses  []string
	Peers      []wgQuickPeer
}

type wgQuickPeer struct {
	PublicKey           string
	Endpoint            string
	AllowedIPs          []string
	PersistentKeepalive string
}

// parseWGQuick parses wg-quick INI text. Unknown keys are ignored; a file
// without a [Peer] carrying PublicKey and Endpoint is rejected.
func parseWGQuick(raw string) (*wgQuickConfig, error) {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	scanner.Buffer(make([]byte, 1024), 1024*1024)

	cfg := &wgQuickConfig{}
	section := ""
	var currentPeer *wgQuickPeer
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			switch section {
			case "interface":
				currentPeer = nil
			case "peer":
				cfg.Peers = append(cfg.Peers, wgQuickPeer{})
				currentPeer = &cfg.Peers[len(cfg.Peers)-1]
			default:
				return nil, fmt.Errorf("line %d: unsupported section [%s]", lineNum, section)
			}
			continue
		}

		idx := strings.Index(line, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("line %d: invalid key-value pair", lineNum)
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := stripInlineComment(line[idx+1:])

		switch section {
		case "interface":
			switch key {
			case "privatekey":
				cfg.PrivateKey = value
			case "address":
				cfg.Addresses = append(cfg.Addresses, parseCSVList(value)...)
			}
		case "peer":
			switch key {
			case "publickey":
				currentPeer.PublicKey = value
			case "endpoint":
				currentPeer.Endpoint = value
			case "allowedips":
				currentPeer.AllowedIPs = append(currentPeer.AllowedIPs, parseCSVList(value)...)
			case "persistentkeepalive":
				currentPeer.PersistentKeepalive = value
			}
		default:
			return nil, fmt.Errorf("line %d: key outside of a section", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(cfg.Peers) == 0 {
		return nil, fmt.Errorf("at least one [Peer] section is required")
	}
	if cfg.Peers[0].PublicKey == "" || cfg.Peers[0].Endpoint == "" {
		return nil, fmt.Errorf("[Peer] PublicKey and Endpoint are required")
	}
	return cfg, nil
}

func parseCSVList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func stripInlineComment(value string) string {
	for _, marker := range []string{" #", " ;"} {
		if idx := strings.Index(value, marker); idx >= 0 {
			value = value[:idx]
		}
	}
	return strings.TrimSpace(value)
}
