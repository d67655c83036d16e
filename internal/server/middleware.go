package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/sahelsolar/fieldops/internal/identity"
)

const (
	headerCallerRole = "X-Caller-Role"
	headerCallerID   = "X-Caller-Id"
)

// CallerIdentity resolves the caller from trusted gateway headers.
// Authentication happens upstream; an absent role means an administrator.
// A technician caller must carry a valid technician id.
func (s *Server) CallerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetHeader(headerCallerRole)))
		if role != string(identity.RoleTechnician) {
			ctx := identity.WithCaller(c.Request.Context(), identity.Administrator())
			c.Request = c.Request.WithContext(ctx)
			c.Next()
			return
		}

		id, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader(headerCallerID)))
		if err != nil {
			AbortWithError(c, newValidationError(headerCallerID, "invalid_caller_id", "technician callers must send a valid id"))
			return
		}

		ctx := identity.WithCaller(c.Request.Context(), identity.Technician(id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
