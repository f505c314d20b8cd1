package statictoken

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// Gin context keys.
const (
	ContextKeyIdentity = "auth_identity"
	ContextKeyUserID   = "auth_user_id"
	ContextKeyRole     = "auth_role"
)

// Middleware authenticates requests with the verifier and stores the caller
// identity in the gin context.
type Middleware struct {
	verifier    *Verifier
	tokenHeader string
	logger      logging.Logger
}

func NewMiddleware(verifier *Verifier, tokenHeader string, logger logging.Logger) *Middleware {
	if tokenHeader == "" {
		tokenHeader = "Authorization"
	}
	return &Middleware{
		verifier:    verifier,
		tokenHeader: tokenHeader,
		logger:      logger,
	}
}

// Authenticate resolves the bearer token. When authentication is disabled
// every caller proceeds as Anonymous; when enabled a missing or unknown
// token aborts with 401.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.verifier.Enabled() {
			setIdentity(c, Anonymous)
			c.Next()
			return
		}

		token, err := ExtractBearer(c.GetHeader(m.tokenHeader))
		if err != nil {
			m.abort(c, err)
			return
		}

		id, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("rejected bearer token",
				logging.String("path", c.FullPath()),
				logging.String("remote", c.ClientIP()),
			)
			m.abort(c, err)
			return
		}

		setIdentity(c, id)
		c.Next()
	}
}

// RequireRole admits only the listed roles. Admin passes every staff check.
func (m *Middleware) RequireRole(roles ...common.Role) gin.HandlerFunc {
	allowed := make(map[common.Role]bool, len(roles)+1)
	for _, r := range roles {
		allowed[r] = true
		if r == common.RoleStaff {
			allowed[common.RoleAdmin] = true
		}
	}
	return func(c *gin.Context) {
		if !m.verifier.Enabled() {
			c.Next()
			return
		}
		id := IdentityFromContext(c)
		if !allowed[id.Role] {
			m.abort(c, errors.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

func (m *Middleware) abort(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), gin.H{
		"error": gin.H{
			"code":    code,
			"message": errors.GetMessage(err),
		},
	})
}

func setIdentity(c *gin.Context, id Identity) {
	c.Set(ContextKeyIdentity, id)
	c.Set(ContextKeyUserID, id.UserID)
	c.Set(ContextKeyRole, id.Role)
}

// IdentityFromContext returns the caller identity, or Anonymous when the
// authenticate middleware did not run.
func IdentityFromContext(c *gin.Context) Identity {
	if v, ok := c.Get(ContextKeyIdentity); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Anonymous
}
