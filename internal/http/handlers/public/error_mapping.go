package public

import (
	"errors"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/http/response"
	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError maps one business error to an envelope code and message
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var itemHoldErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidRequest, code: response.CodeBadRequest, msg: "invalid request"},
	{target: service.ErrItemNotFound, code: response.CodeNotFound, msg: "item not found"},
	{target: service.ErrItemAlreadyReserved, code: response.CodeConflict, msg: "item already reserved"},
	{target: service.ErrItemAlreadyLocked, code: response.CodeConflict, msg: "item locked"},
	{target: service.ErrItemNotAvailable, code: response.CodeConflict, msg: "item not available"},
	{target: service.ErrNotReservationHolder, code: response.CodeConflict, msg: "reservation held by another client"},
	{target: service.ErrSelectionOwned, code: response.CodeConflict, msg: "item belongs to a special selection"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidRequest, code: response.CodeBadRequest, msg: "invalid request"},
	{target: service.ErrCartNotFound, code: response.CodeNotFound, msg: "cart line not found"},
}
