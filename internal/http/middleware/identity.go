package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID carries the acting caregiver in demo deployments.
	HeaderUserID = "X-User-ID"
	// HeaderRobotToken authenticates external robot triggers.
	HeaderRobotToken = "X-Robot-Token"
	// DefaultActor is used when no identity was supplied.
	DefaultActor = "demo-user"

	ctxKeyActor = "actor"
)

// Actor returns who is acting on this request: an identity set upstream
// under "actor", else the X-User-ID header, else DefaultActor.
func Actor(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyActor); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader(HeaderUserID)); h != "" {
			return h
		}
	}
	return DefaultActor
}

// RequireToken rejects requests whose header does not carry token. An empty
// token disables the check.
func RequireToken(header, token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := c.GetHeader(header)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "missing or invalid " + header,
			})
			return
		}
		c.Set(ctxKeyActor, "robot-trigger")
		c.Next()
	}
}
