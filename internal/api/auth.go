// Package api implements HTTP handlers and helpers for the tripdash service.
package api

import (
    "net/http"
    "strings"
)

type Principal struct {
    Account string
    Role    string // admin, dispatcher, driver
}

// getPrincipal extracts account and role from a bearer token or headers.
// - If Authorization: Bearer is present, uses the configured verifier (dev/hmac).
// - Else falls back to headers for dev.
func (s *Server) getPrincipal(r *http.Request) Principal {
    authz := r.Header.Get("Authorization")
    if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
        tok := strings.TrimSpace(authz[len("Bearer "):])
        if pr, err := s.Auth.Verify(tok); err == nil {
            return Principal{Account: pr.Account, Role: pr.Role}
        }
    }
    account := r.Header.Get("X-Account-Id")
    role := r.Header.Get("X-Role")
    if account == "" {
        account = "acct_demo"
    }
    if role == "" {
        role = "admin"
    }
    return Principal{Account: account, Role: role}
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

// CanDispatch reports whether the principal may create or mutate trips.
func (p Principal) CanDispatch() bool { return p.Role == "admin" || p.Role == "dispatcher" }
