package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/types/common"
)

// ContextKeyRequestID is where the request ID middleware stores its value.
const ContextKeyRequestID = "request_id"

func requestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

func respondOK[T any](c *gin.Context, data T) {
	respond(c, http.StatusOK, data)
}

func respond[T any](c *gin.Context, status int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = requestID(c)
	c.JSON(status, resp)
}

func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	resp := common.NewErrorResponse(string(code), errors.GetMessage(err))
	resp.RequestID = requestID(c)
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), resp)
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, errors.New(errors.ErrCodeBadRequest, message))
}
