package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/outloud-backend/internal/http/response"
	"github.com/yungbote/outloud-backend/internal/platform/apierr"
)

// respondServiceError maps a service error to its terminal status and
// machine code, hiding internals behind internal_error.
func respondServiceError(c *gin.Context, err error) {
	ae := apierr.From(err)
	response.RespondError(c, ae.Status, ae.Code, ae)
}
