// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"flight-concierge/internal/agent"
	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/metrics"

	"github.com/google/uuid"
)

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

type chatResponse struct {
	ConversationID string                 `json:"conversationId"`
	Answer         string                 `json:"answer"`
	Steps          int                    `json:"steps"`
	ToolTrace      []agent.ToolInvocation `json:"toolTrace,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	metrics.ChatRequestsActive.WithLabelValues("/api/chat").Inc()
	defer metrics.ChatRequestsActive.WithLabelValues("/api/chat").Dec()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.NewToolInvalidArgsError("chat", "invalid JSON body"))
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, errors.NewToolInvalidArgsError("chat", "message is required"))
		return
	}

	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	s.logger.Info("chat request received", map[string]interface{}{
		"conversationId": req.ConversationID,
	})

	result, err := s.runner.Run(r.Context(), req.Message)
	if err != nil {
		stdErr := errors.Normalize(err)
		s.logger.Error("agent run failed", map[string]interface{}{
			"conversationId": req.ConversationID,
			"errorCode":      stdErr.Code,
			"errorCategory":  errors.GetErrorCategory(stdErr.Code),
			"error":          stdErr.Message,
		})
		s.writeError(w, statusForError(stdErr), stdErr)
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		ConversationID: req.ConversationID,
		Answer:         result.Answer,
		Steps:          result.Steps,
		ToolTrace:      result.ToolTrace,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(chatPage))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, stdErr *errors.StandardError) {
	s.writeJSON(w, status, errorResponse{
		Error:   stdErr.Message,
		Code:    string(stdErr.Code),
		Details: stdErr.Details,
	})
}

func statusForError(stdErr *errors.StandardError) int {
	switch stdErr.Code {
	case errors.ErrCodeToolInvalidArgs:
		return http.StatusBadRequest
	case errors.ErrCodeLLMTimeout, errors.ErrCodeAmadeusTimeout, errors.ErrCodeToolTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeMaxStepsExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
