// Package auth provides bearer token verification for API requests.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// Verifier validates bearer tokens and extracts account/role claims.
// Two modes: dev (token is "account:role", no signature) and hmac
// (HS256 JWT signed with the shared secret).
type Verifier struct {
	Mode         string
	Secret       []byte
	AccountClaim string
	RoleClaim    string
}

type Principal struct {
	Account string
	Role    string
}

// NewVerifier builds a Verifier for the given mode. An empty mode
// defaults to dev so local runs need no secret.
func NewVerifier(mode, secret string) *Verifier {
	m := strings.ToLower(strings.TrimSpace(mode))
	if m == "" {
		m = "dev"
	}
	return &Verifier{
		Mode:         m,
		Secret:       []byte(secret),
		AccountClaim: "account",
		RoleClaim:    "role",
	}
}

func (v *Verifier) Verify(token string) (Principal, error) {
	if v.Mode == "dev" {
		// token format: account:role
		parts := strings.Split(token, ":")
		if len(parts) >= 2 && parts[0] != "" {
			return Principal{Account: parts[0], Role: strings.ToLower(parts[1])}, nil
		}
		return Principal{}, errors.New("invalid dev token; expected account:role")
	}
	if v.Mode != "hmac" {
		return Principal{}, errors.New("unsupported auth mode")
	}

	segs := strings.Split(token, ".")
	if len(segs) != 3 {
		return Principal{}, errors.New("invalid JWT")
	}
	headerJSON, err := b64urlDecode(segs[0])
	if err != nil {
		return Principal{}, err
	}
	payloadJSON, err := b64urlDecode(segs[1])
	if err != nil {
		return Principal{}, err
	}
	sig, err := b64urlDecode(segs[2])
	if err != nil {
		return Principal{}, err
	}
	var hdr map[string]any
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return Principal{}, err
	}
	if alg, _ := hdr["alg"].(string); alg != "HS256" {
		return Principal{}, errors.New("unsupported alg for hmac")
	}
	mac := hmac.New(sha256.New, v.Secret)
	mac.Write([]byte(segs[0] + "." + segs[1]))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return Principal{}, errors.New("bad signature")
	}

	var claims map[string]any
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return Principal{}, err
	}
	account, _ := claims[v.AccountClaim].(string)
	role, _ := claims[v.RoleClaim].(string)
	if account == "" {
		return Principal{}, errors.New("missing account claim")
	}
	if role == "" {
		role = "user"
	}
	return Principal{Account: account, Role: strings.ToLower(role)}, nil
}

func b64urlDecode(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) }
