package auth

import (
	"strings"

	"examrecord/internal/store/model"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie set by the verify and guest endpoints.
const CookieName = "access_token"

const contextUserKey = "examrecord.user"

// Identify resolves the caller's identity from the session cookie or a
// Bearer header and stores it on the context. It never aborts: handlers
// decide whether a missing identity is a 401 or a soft auth prompt.
func (s *Service) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			header := c.GetHeader("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if token != "" {
			if user, err := s.UserByToken(c.Request.Context(), token); err == nil && user != nil {
				c.Set(contextUserKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the identity placed by Identify, or nil.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
