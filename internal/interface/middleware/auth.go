package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/streamhive/streamhive/pkg/apperr"
	"github.com/streamhive/streamhive/pkg/helpers"
	"github.com/streamhive/streamhive/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxUsernameKey = "username"
)

// tokenFromRequest reads the access token from the cookie or, failing
// that, an Authorization bearer header.
func tokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie("access_token"); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// Auth validates the access token and injects the caller's identity
// into the Gin context. Access tokens are self-contained; no stored
// state is consulted.
func Auth(tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFromRequest(c)
		if tok == "" {
			response.AbortError(c, apperr.HTTPStatus(apperr.Unauthorized("")), "missing access token", nil)
			return
		}
		claims, err := tokens.Parse(tok, helpers.AccessToken)
		if err != nil {
			response.AbortError(c, apperr.HTTPStatus(err), "invalid access token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		c.Next()
	}
}

// OptionalAuth injects identity when a valid access token is present
// and otherwise lets the request through anonymously. Used by channel
// profiles, where the viewer context only toggles is_subscribed.
func OptionalAuth(tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := tokenFromRequest(c); tok != "" {
			if claims, err := tokens.Parse(tok, helpers.AccessToken); err == nil {
				c.Set(CtxUserIDKey, claims.UserID)
				c.Set(CtxUsernameKey, claims.Username)
			}
		}
		c.Next()
	}
}
