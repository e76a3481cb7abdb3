package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/outloud-backend/internal/http/response"
	"github.com/yungbote/outloud-backend/internal/platform/ctxutil"
	"github.com/yungbote/outloud-backend/internal/services"
)

// Uploads over this size are drained and rejected without buffering
// the whole body.
const maxUploadBytes = 10 << 20

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func (ch *ConversationHandler) Create(c *gin.Context) {
	var req struct {
		TopicID string `json:"topic_id"`
		Persona string `json:"persona"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	topicID, err := uuid.Parse(req.TopicID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid topic_id"))
		return
	}

	caller := ctxutil.GetRequestData(c.Request.Context())
	conv, err := ch.conversationService.Create(c.Request.Context(), topicID, req.Persona, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"conversation": conv})
}

func (ch *ConversationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid conversation id"))
		return
	}
	caller := ctxutil.GetRequestData(c.Request.Context())
	detail, err := ch.conversationService.GetDetail(c.Request.Context(), id, caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (ch *ConversationHandler) List(c *gin.Context) {
	caller := ctxutil.GetRequestData(c.Request.Context())
	convs, err := ch.conversationService.ListForUser(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": convs})
}

func (ch *ConversationHandler) SubmitVoiceMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid conversation id"))
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_audio", errors.New("audio file required"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "payload_too_large", errors.New("audio file too large"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_audio", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_audio", err)
		return
	}

	caller := ctxutil.GetRequestData(c.Request.Context())
	result, err := ch.conversationService.SubmitVoiceTurn(c.Request.Context(), id, caller, services.VoiceUpload{
		Data:     data,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Filename: fileHeader.Filename,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
