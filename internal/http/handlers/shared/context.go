package shared

import (
	"strings"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SessionIDHeader carries the anonymous cart session identifier
const SessionIDHeader = "X-Session-ID"

// ClientCodeHeader carries the customer's client code
const ClientCodeHeader = "X-Client-Code"

// GetSessionID extracts the session id header, writing a 400 envelope and
// returning false when it is absent.
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID := strings.TrimSpace(c.GetHeader(SessionIDHeader))
	if sessionID == "" {
		response.BadRequest(c, "session id header missing")
		return "", false
	}
	return sessionID, true
}

// GetClientCode extracts the optional client code header
func GetClientCode(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(ClientCodeHeader))
}
