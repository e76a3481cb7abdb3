package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/outloud-backend/internal/http/response"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (hh *HealthHandler) Health(c *gin.Context) {
	response.RespondOK(c, gin.H{"status": "ok"})
}
