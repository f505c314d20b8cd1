// Package statictoken authenticates API callers against the static bearer
// tokens issued to the kiosk, the front-desk portal and back-office
// operators. There is no identity provider round-trip; tokens live in
// configuration and rotate by redeploying it.
package statictoken

import (
	"crypto/subtle"
	"strings"

	"github.com/turtacn/MemberPulse-Intelligence/internal/config"
	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Role   common.Role
}

// Anonymous is the identity assigned when authentication is disabled or the
// route admits unauthenticated callers.
var Anonymous = Identity{Role: common.RoleNone}

// Verifier resolves bearer tokens to identities.
type Verifier struct {
	enabled bool
	tokens  map[string]Identity
	logger  logging.Logger
}

// NewVerifier builds a verifier from the auth configuration. Tokens with an
// unknown role are rejected by config validation before this runs.
func NewVerifier(cfg config.AuthConfig, logger logging.Logger) *Verifier {
	tokens := make(map[string]Identity, len(cfg.Tokens))
	for _, tok := range cfg.Tokens {
		tokens[tok.Token] = Identity{
			UserID: tok.UserID,
			Role:   common.Role(tok.Role),
		}
	}
	return &Verifier{
		enabled: cfg.Enabled,
		tokens:  tokens,
		logger:  logger,
	}
}

// Enabled reports whether authentication is enforced.
func (v *Verifier) Enabled() bool { return v.enabled }

// Verify resolves a raw bearer token. Lookups run in constant time over the
// token set so a mismatch does not leak which prefix matched.
func (v *Verifier) Verify(token string) (Identity, error) {
	if token == "" {
		return Anonymous, errors.New(errors.ErrCodeUnauthorized, "missing bearer token")
	}
	for candidate, id := range v.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			return id, nil
		}
	}
	return Anonymous, errors.New(errors.ErrCodeUnauthorized, "invalid bearer token")
}

// ExtractBearer pulls the token out of an Authorization-style header value.
func ExtractBearer(headerValue string) (string, error) {
	if headerValue == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(headerValue, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "malformed authorization header")
	}
	return parts[1], nil
}
