package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gnosis-influencer/internal/app"
	"gnosis-influencer/internal/transport/http/response"
)

// ReplyGenerator is the slice of ReplyService the handler needs.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, input app.GenerateReplyInput) (*app.GenerateReplyResult, error)
}

type ReplyHandler struct {
	service ReplyGenerator
}

type GenerateReplyRequest struct {
	ConversationID uint `json:"conversation_id" binding:"required,gt=0"`
	ContentChunkID uint `json:"content_chunk_id"`
}

func NewReplyHandler(service ReplyGenerator) *ReplyHandler {
	return &ReplyHandler{service: service}
}

// PostAIMessage runs the reply pipeline for a conversation and
// acknowledges how many messages were appended.
func (h *ReplyHandler) PostAIMessage(c *gin.Context) {
	var req GenerateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "conversation_id is required")
		return
	}

	result, err := h.service.GenerateReply(c.Request.Context(), app.GenerateReplyInput{
		ConversationID: req.ConversationID,
		ContentChunkID: req.ContentChunkID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrConversationNotFound):
			response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
		case errors.Is(err, app.ErrNoReplyBasis), errors.Is(err, app.ErrNoSimilarContent):
			response.Error(c, http.StatusUnprocessableEntity, response.CodeNoGroundableContent, err.Error())
		case errors.Is(err, app.ErrUpstream):
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamUnavailable, "failed to retrieve grounding data")
		case errors.Is(err, app.ErrGeneration):
			response.Error(c, http.StatusBadGateway, response.CodeGenerationFailed, "reply generation failed")
		case errors.Is(err, app.ErrInvalidModelOutput):
			response.Error(c, http.StatusBadGateway, response.CodeInvalidModelOutput, "invalid model output")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate reply failed")
		}
		return
	}

	response.OK(c, gin.H{
		"conversation_id":  result.ConversationID,
		"content_chunk_id": result.ContentChunkID,
		"appended":         len(result.Messages),
	})
}
