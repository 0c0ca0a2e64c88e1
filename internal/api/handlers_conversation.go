package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lorettarehm/audhd.ai/internal/api/respond"
	"github.com/lorettarehm/audhd.ai/internal/api/validate"
	"github.com/lorettarehm/audhd.ai/internal/auth"
	"github.com/lorettarehm/audhd.ai/internal/model"
	"github.com/lorettarehm/audhd.ai/internal/services"
)

// ConversationHandler provides HTTP transport for conversation and message operations.
type ConversationHandler struct {
	svc   *services.ConversationService
	authz auth.Authorizer
}

func NewConversationHandler(svc *services.ConversationService, authz auth.Authorizer) *ConversationHandler {
	return &ConversationHandler{svc: svc, authz: authz}
}

// conversationID reads the {conversationId} path variable. An id that is not
// a UUID cannot name any conversation, so it is reported as not found.
func conversationID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["conversationId"]
	if err := validate.ID("conversationId", id); err != nil {
		respond.WriteNotFound(w, "conversation not found")
		return "", false
	}
	return id, true
}

// ListConversations GET /api/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "conversation.list")
	if !ok {
		return
	}
	convs, err := h.svc.ListConversations(r.Context(), actor.UserID)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	if convs == nil {
		convs = []*model.Conversation{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": convs, "count": len(convs)})
}

// CreateConversation POST /api/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "conversation.create")
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateConversation(req.Title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	c, err := h.svc.CreateConversation(r.Context(), actor.UserID, req.Title)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, c)
}

// GetConversation GET /api/conversations/{conversationId}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "conversation.read")
	if !ok {
		return
	}
	id, ok := conversationID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.GetConversation(r.Context(), actor.UserID, id)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// TouchConversation PATCH /api/conversations/{conversationId}
func (h *ConversationHandler) TouchConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "conversation.update")
	if !ok {
		return
	}
	id, ok := conversationID(w, r)
	if !ok {
		return
	}
	var req struct {
		UpdatedAt *time.Time `json:"updatedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	var at time.Time
	if req.UpdatedAt != nil {
		at = *req.UpdatedAt
	}
	if err := h.svc.TouchConversation(r.Context(), actor.UserID, id, at); err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteConversation DELETE /api/conversations/{conversationId}
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "conversation.delete")
	if !ok {
		return
	}
	id, ok := conversationID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteConversation(r.Context(), actor.UserID, id); err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages GET /api/conversations/{conversationId}/messages
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "message.list")
	if !ok {
		return
	}
	id, ok := conversationID(w, r)
	if !ok {
		return
	}
	msgs, err := h.svc.ListMessages(r.Context(), actor.UserID, id)
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs, "count": len(msgs)})
}

// CreateMessage POST /api/conversations/{conversationId}/messages
func (h *ConversationHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := authorize(h.authz, w, r, "message.create")
	if !ok {
		return
	}
	id, ok := conversationID(w, r)
	if !ok {
		return
	}
	var req struct {
		Content         string          `json:"content"`
		Role            string          `json:"role"`
		AudioURL        *string         `json:"audioUrl,omitempty"`
		EmotionAnalysis json.RawMessage `json:"emotionAnalysis,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateMessage(req.Content, req.Role, req.AudioURL, req.EmotionAnalysis); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	emotion := req.EmotionAnalysis
	if string(emotion) == "null" {
		emotion = nil
	}
	m, err := h.svc.AppendMessage(r.Context(), actor.UserID, &model.Message{
		ConversationID:  id,
		Content:         req.Content,
		Role:            model.Role(req.Role),
		AudioURL:        req.AudioURL,
		EmotionAnalysis: emotion,
	})
	if err != nil {
		respond.WriteStoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, m)
}
