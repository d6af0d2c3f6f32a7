package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func signHS256(t *testing.T, secret, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(header + "." + body))
	return header + "." + body + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyDev(t *testing.T) {
	v := NewVerifier("", "")
	p, err := v.Verify("acct_demo:Dispatcher")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Account != "acct_demo" || p.Role != "dispatcher" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if _, err := v.Verify("nodelimiter"); err == nil {
		t.Fatal("expected error for malformed dev token")
	}
}

func TestVerifyHMAC(t *testing.T) {
	v := NewVerifier("hmac", "s3cr3t")
	tok := signHS256(t, "s3cr3t", `{"account":"acct_1","role":"admin"}`)
	p, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if p.Account != "acct_1" || p.Role != "admin" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestVerifyHMACBadSignature(t *testing.T) {
	v := NewVerifier("hmac", "s3cr3t")
	tok := signHS256(t, "wrong", `{"account":"acct_1","role":"admin"}`)
	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected bad signature error")
	}
}

func TestVerifyHMACMissingAccount(t *testing.T) {
	v := NewVerifier("hmac", "s3cr3t")
	tok := signHS256(t, "s3cr3t", `{"role":"admin"}`)
	if _, err := v.Verify(tok); err == nil {
		t.Fatal("expected missing account error")
	}
}
