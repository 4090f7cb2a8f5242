package wallet

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"regexp"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// base58Pattern matches the Bitcoin/Solana base58 alphabet in the length
// range a pasted secret key plausibly falls into.
var base58Pattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,100}$`)

// ParseSecretKey decodes raw key material into a valid Ed25519 private key.
// Two encodings are accepted: a JSON array of byte values (the Solana CLI
// keypair file format) and a base58 string. The decoded bytes must be exactly
// 64 bytes where the second half is the public key derived from the first
// half, and the public key must decode as a point on the edwards25519 curve.
func ParseSecretKey(raw string) (ed25519.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidFormat
	}

	var secret []byte
	if strings.HasPrefix(raw, "[") {
		var values []int
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, ErrInvalidFormat
		}
		secret = make([]byte, 0, len(values))
		for _, v := range values {
			if v < 0 || v > 255 {
				return nil, ErrInvalidFormat
			}
			secret = append(secret, byte(v))
		}
	} else {
		decoded, err := base58.Decode(raw)
		if err != nil {
			return nil, ErrInvalidFormat
		}
		secret = decoded
	}

	if len(secret) != ed25519.PrivateKeySize {
		return nil, ErrInvalidFormat
	}

	derived := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], secret[ed25519.SeedSize:]) {
		return nil, ErrInvalidFormat
	}

	if _, err := new(edwards25519.Point).SetBytes(secret[ed25519.SeedSize:]); err != nil {
		return nil, ErrInvalidFormat
	}

	return ed25519.PrivateKey(secret), nil
}

// LooksLikeKeyMaterial reports whether pasted free-form text is probably key
// material worth an import attempt: a JSON array, a seed-phrase-shaped run of
// 12-24 words, or a base58 blob. It is a routing heuristic only; the strict
// parse in ParseSecretKey always has the final say.
func LooksLikeKeyMaterial(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	if strings.HasPrefix(text, "[") {
		return true
	}

	if words := strings.Fields(text); len(words) >= 12 && len(words) <= 24 {
		return true
	}

	return base58Pattern.MatchString(text)
}
