package wallet

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Binding token errors
var (
	ErrTokenMalformed = errors.New("binding token malformed")
	ErrTokenSignature = errors.New("binding token signature mismatch")
	ErrTokenExpired   = errors.New("binding token expired")
)

// TokenIssuer mints and verifies the short-lived tokens embedded in wallet
// deep links. A token is base64url(payload).base64url(hmac-sha256) — the
// payload names the user and an expiry, the signature makes it tamper-proof.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given signing secret and TTL
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

type tokenPayload struct {
	ID        string `json:"jti"`
	UserID    uint   `json:"user_id"`
	ExpiresAt int64  `json:"exp"`
}

// Issue mints a signed binding token for a user
func (t *TokenIssuer) Issue(userID uint, now time.Time) (string, error) {
	payload := tokenPayload{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(t.ttl).Unix(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode binding token: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + t.sign(encoded), nil
}

// Verify checks the signature and expiry of a binding token and returns the
// user it was issued to.
func (t *TokenIssuer) Verify(token string, now time.Time) (uint, error) {
	var encoded, signature string
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			encoded, signature = token[:i], token[i+1:]
			break
		}
	}
	if encoded == "" || signature == "" {
		return 0, ErrTokenMalformed
	}

	if !hmac.Equal([]byte(t.sign(encoded)), []byte(signature)) {
		return 0, ErrTokenSignature
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, ErrTokenMalformed
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, ErrTokenMalformed
	}

	if now.Unix() > payload.ExpiresAt {
		return 0, ErrTokenExpired
	}

	return payload.UserID, nil
}

func (t *TokenIssuer) sign(encoded string) string {
	h := hmac.New(sha256.New, t.secret)
	h.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// DeepLink builds the wallet-app deep link carrying a binding token
func DeepLink(baseURL, token string) string {
	return fmt.Sprintf("%s?binding_token=%s", baseURL, url.QueryEscape(token))
}
