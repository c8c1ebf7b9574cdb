package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/service/session"
)

// Gatekeeper decides whether a request may reach a route.
type Gatekeeper interface {
	Gate(ctx context.Context, access session.Access) (redirect string, ok bool)
}

func gateMiddleware(gate Gatekeeper, access session.Access) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect, ok := gate.Gate(c.Request.Context(), access)
		if ok {
			c.Next()
			return
		}

		status, msg := http.StatusUnauthorized, "authentication required"
		if access == session.AccessGuest {
			status, msg = http.StatusForbidden, "already signed in"
		}
		c.AbortWithStatusJSON(status, gin.H{"error": msg, "redirect": redirect})
	}
}
