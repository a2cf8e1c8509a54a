package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"pensionadvisor/internal/identity"
	"pensionadvisor/internal/reqctx"
)

// tokenAuthenticator issues and verifies opaque bearer tokens of the form
// base64("userID|role|expiryUnix|signature"). No JWT or session-store
// library exists anywhere in the example pack for this domain (spec.md §6
// treats the bearer token as an opaque external-collaborator artifact), so
// this is a deliberate standard-library boundary rather than a corpus
// substitute — see DESIGN.md.
type tokenAuthenticator struct {
	secret []byte
}

func newTokenAuthenticator() *tokenAuthenticator {
	secret := os.Getenv("AUTH_TOKEN_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return &tokenAuthenticator{secret: []byte(secret)}
}

const tokenTTL = 24 * time.Hour

func (a *tokenAuthenticator) issue(userID int, role identity.Role) string {
	expiry := timeNow().Add(tokenTTL).Unix()
	payload := fmt.Sprintf("%d|%s|%d", userID, role, expiry)
	sig := a.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + "|" + sig))
}

func (a *tokenAuthenticator) verify(token string) (int, identity.Role, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, "", false
	}
	parts := strings.SplitN(string(raw), "|", 4)
	if len(parts) != 4 {
		return 0, "", false
	}
	userID, role, expiryStr, sig := parts[0], parts[1], parts[2], parts[3]
	payload := userID + "|" + role + "|" + expiryStr
	if !hmac.Equal([]byte(sig), []byte(a.sign(payload))) {
		return 0, "", false
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil || timeNow().Unix() > expiry {
		return 0, "", false
	}
	id, err := strconv.Atoi(userID)
	if err != nil {
		return 0, "", false
	}
	return id, identity.Role(role), true
}

func (a *tokenAuthenticator) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// timeNow is the single seam for the otherwise-unmockable wall clock.
var timeNow = time.Now

// authenticatedUser extracts the caller id/role from the Authorization
// header and writes a 401 response on failure. It does not touch the
// request context; requireAuth and requireRole seed that (C1).
func (s *server) authenticatedUser(w http.ResponseWriter, r *http.Request) (int, identity.Role, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return 0, "", false
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	userID, role, ok := s.deps.Auth.verify(token)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return 0, "", false
	}
	return userID, role, true
}

func (s *server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, ok := s.authenticatedUser(w, r)
		if !ok {
			return
		}
		// The query itself isn't known yet at this layer; handlePrompt
		// re-seeds the context once it has decoded the request body.
		ctx := reqctx.Set(r.Context(), userID, "")
		next(w, r.WithContext(ctx))
	}
}

func (s *server) requireRole(role identity.Role, next http.HandlerFunc) http.HandlerFunc {
	roleStr := string(role)
	return func(w http.ResponseWriter, r *http.Request) {
		userID, callerRole, ok := s.authenticatedUser(w, r)
		if !ok {
			return
		}
		if string(callerRole) != roleStr {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}
		ctx := reqctx.Set(r.Context(), userID, "")
		next(w, r.WithContext(ctx))
	}
}
