package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rocketman0418/astra-chats/internal/domain/chat"
	"github.com/rocketman0418/astra-chats/internal/interfaces/httpserver/responses"
	"github.com/rocketman0418/astra-chats/internal/utils/platformerrors"
)

const (
	ownerIDHeader    = "X-Owner-Id"
	ownerEmailHeader = "X-Owner-Email"
	ownerNameHeader  = "X-Owner-Name"

	ownerContextKey = "owner"
)

// OwnerMiddleware resolves the calling principal from the identity headers
// set by the edge proxy. Requests without an owner id are rejected.
func OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := chat.Owner{
			ID:    strings.TrimSpace(c.GetHeader(ownerIDHeader)),
			Email: strings.TrimSpace(c.GetHeader(ownerEmailHeader)),
			Name:  strings.TrimSpace(c.GetHeader(ownerNameHeader)),
		}
		if !owner.Valid() {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized,
				"owner identity required", "7f1d4b8e-2a6c-4f9d-b0e3-5c8a1d4f7b29")
			c.Abort()
			return
		}
		c.Set(ownerContextKey, owner)
		c.Next()
	}
}

// GetOwnerFromContext returns the principal resolved by OwnerMiddleware.
func GetOwnerFromContext(c *gin.Context) (chat.Owner, bool) {
	val, ok := c.Get(ownerContextKey)
	if !ok {
		return chat.Owner{}, false
	}
	owner, ok := val.(chat.Owner)
	return owner, ok
}
