package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

const adminTokenPrefix = "sig_adm_"

var ErrMalformedToken = errors.New("security: malformed session token")

// SessionTokens issues admin bearer tokens: a fixed prefix followed by
// Bytes of hex-encoded entropy.
type SessionTokens struct {
	Bytes int
}

func (g SessionTokens) NewToken() (string, error) {
	buf := make([]byte, g.size())
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Join(ErrMalformedToken, err)
	}
	return adminTokenPrefix + hex.EncodeToString(buf), nil
}

// Check rejects values that could not have been issued by NewToken, so the
// session store is never queried with arbitrary header content.
func (g SessionTokens) Check(token string) error {
	raw, ok := strings.CutPrefix(token, adminTokenPrefix)
	if !ok || len(raw) != 2*g.size() {
		return ErrMalformedToken
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return ErrMalformedToken
	}
	return nil
}

func (g SessionTokens) size() int {
	if g.Bytes <= 0 {
		return 24
	}
	return g.Bytes
}
