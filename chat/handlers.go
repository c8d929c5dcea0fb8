package chat

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/relay/auth"
	"github.com/dmitrymomot/relay/core/response"
)

type historyRequest struct {
	ChannelID uuid.UUID `json:"channel_id"`
	Limit     int       `json:"limit"`
}

// HandleHistory handles POST /api/v1/chat/messages/history. It requires the
// auth middleware to have placed a user ID on the request context.
func (s *Service) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req historyRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChannelID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "channel_id is required")
		return
	}

	messages, err := s.History(r.Context(), userID, req.ChannelID, req.Limit)
	switch {
	case errors.Is(err, ErrChannelAccessDenied):
		response.Error(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		response.Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	_ = response.JSON(w, http.StatusOK, messages)
}
