// Package wgkey decodes, encodes and derives WireGuard Curve25519 keys.
package wgkey

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/yllada/vpn-client/common"
)

// KeyLen is the length of a WireGuard key in bytes.
const KeyLen = 32

// Decode parses a standard base64 key. Anything that does not decode to
// exactly KeyLen bytes fails with common.ErrKeyFormat; keys are never
// truncated or padded.
func Decode(s string) (wgtypes.Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return wgtypes.Key{}, fmt.Errorf("empty key: %w", common.ErrKeyFormat)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return wgtypes.Key{}, fmt.Errorf("decoding base64: %v: %w", err, common.ErrKeyFormat)
	}
	return FromBytes(b)
}

// FromBytes converts raw bytes into a key.
func FromBytes(b []byte) (wgtypes.Key, error) {
	if len(b) != KeyLen {
		return wgtypes.Key{}, fmt.Errorf("got %d bytes: %w", len(b), common.ErrKeyFormat)
	}
	var k wgtypes.Key
	copy(k[:], b)
	return k, nil
}

// Encode returns the standard base64 form of k.
func Encode(k wgtypes.Key) string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// PublicFromPrivate derives the X25519 public key for a private key.
func PublicFromPrivate(priv wgtypes.Key) wgtypes.Key {
	return priv.PublicKey()
}

// PublicFromPrivateBase64 decodes priv and returns the encoded public key.
func PublicFromPrivateBase64(priv string) (string, error) {
	k, err := Decode(priv)
	if err != nil {
		return "", err
	}
	return Encode(PublicFromPrivate(k)), nil
}

// GeneratePrivate returns a new clamped private key.
func GeneratePrivate() (wgtypes.Key, error) {
	k, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		return wgtypes.Key{}, fmt.Errorf("generating private key: %w", err)
	}
	return k, nil
}
