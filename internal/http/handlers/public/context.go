package public

import (
	handlershared "github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getSessionID(c *gin.Context) (string, bool) {
	return handlershared.GetSessionID(c)
}

func getClientCode(c *gin.Context) string {
	return handlershared.GetClientCode(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
