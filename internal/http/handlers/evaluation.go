package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/outloud-backend/internal/http/response"
	"github.com/yungbote/outloud-backend/internal/platform/ctxutil"
	"github.com/yungbote/outloud-backend/internal/services"
)

type EvaluationHandler struct {
	evaluationService services.EvaluationService
}

func NewEvaluationHandler(evaluationService services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluationService: evaluationService}
}

func (eh *EvaluationHandler) Evaluate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid conversation id"))
		return
	}
	caller := ctxutil.GetRequestData(c.Request.Context())
	eval, err := eh.evaluationService.Evaluate(c.Request.Context(), id, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"evaluation": eval})
}

func (eh *EvaluationHandler) GetLatest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid conversation id"))
		return
	}
	caller := ctxutil.GetRequestData(c.Request.Context())
	eval, err := eh.evaluationService.GetLatest(c.Request.Context(), id, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"evaluation": eval})
}
