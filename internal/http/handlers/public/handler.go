package public

import "github.com/Adaptanoide/Photo-Gallery-sub002/internal/provider"

// Handler customer-facing API handlers
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
