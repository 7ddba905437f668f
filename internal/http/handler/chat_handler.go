package handler

import (
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/domain"
	"github.com/buildcraft-as/construct-api/internal/service"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, logger: logger}
}

// ListMessages returns a project's chat history
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}
	p := parsePagination(r)

	result, err := h.chatService.ListMessages(r.Context(), projectID, p)
	if err != nil {
		respondServiceError(w, h.logger, err, "list messages")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PostMessage appends a message to a project's room
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		respondInvalidID(w, "project")
		return
	}

	var req domain.PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondInvalidBody(w)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	msg, err := h.chatService.PostMessage(r.Context(), projectID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "post message")
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}
