package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionKey    = "cart_session"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

// CartSession resolves the anonymous cart session from the X-Cart-Session
// header or the session cookie. A new session is issued when neither
// carries a usable id, and is echoed back in both places.
func CartSession(cookieName string, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(CartSessionHeader)
		if !sessionIDPattern.MatchString(sessionID) {
			sessionID, _ = c.Cookie(cookieName)
		}
		if !sessionIDPattern.MatchString(sessionID) {
			sessionID = uuid.NewString()
			GetLoggerFromContext(c).Debug("Issued cart session", map[string]interface{}{
				"session": sessionID,
			})
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, sessionID, int(ttl.Seconds()), "/", "", secure, true)
		c.Header(CartSessionHeader, sessionID)
		c.Set(CartSessionKey, sessionID)
		c.Next()
	}
}

func GetCartSession(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}
