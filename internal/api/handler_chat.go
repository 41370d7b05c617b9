package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/domain"
)

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (h *Handler) decodeChatRequest(r *http.Request) (*chatRequest, error) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, domain.ErrValidation("invalid request body: %v", err)
	}
	return &req, nil
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeChatRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reply, err := h.chat.Send(r.Context(), actor(r), req.SessionID, req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleDatasetChat(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeChatRequest(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reply, err := h.chat.SendWithDataset(r.Context(), actor(r), req.SessionID, chi.URLParam(r, "id"), req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	msgs, total, err := h.chat.History(r.Context(), chi.URLParam(r, "sessionID"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newListResponse(msgs, page, total))
}
