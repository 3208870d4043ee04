package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie the browser flow stores the token in. API
// clients may send the same token as a bearer header instead.
const SessionCookie = "rollcall_session"

const identifierKey = "student_number"

// Identify extracts the student number from the request's session proof.
// A missing or invalid proof returns ok=false; that is a normal
// unauthenticated state, not an error.
func Identify(c *gin.Context, signingKey, issuer string) (string, bool) {
	token := ""
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		token = cookie
	}
	if authz := c.GetHeader("Authorization"); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[len("bearer "):])
		}
	}
	if token == "" {
		return "", false
	}
	identifier, err := Parse(token, signingKey, issuer)
	if err != nil {
		return "", false
	}
	return identifier, true
}

// RequireStudent aborts with 401 unless the request carries a valid session
// proof, and stores the student number in the gin context.
func RequireStudent(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier, ok := Identify(c, signingKey, issuer)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set(identifierKey, identifier)
		c.Next()
	}
}

// StudentNumber returns the identifier RequireStudent stored, if any.
func StudentNumber(c *gin.Context) string {
	v, _ := c.Get(identifierKey)
	s, _ := v.(string)
	return s
}
