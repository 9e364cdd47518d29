package admin

import (
	handlershared "github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/handlers/shared"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler back-office API handlers
type Handler struct {
	*provider.Container
}

// New creates the admin handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
