package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"shopify-ai-advisor/internal/infra/logging"
	"shopify-ai-advisor/internal/infra/metrics"
	redislim "shopify-ai-advisor/internal/infra/redis"
)

type chatRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type initializePayload struct {
	StoreName   string `json:"storeName"`
	StoreDomain string `json:"storeDomain"`
}

type sendMessagePayload struct {
	UserMessage string `json:"userMessage"`
	SessionID   string `json:"sessionId"`
}

type endSessionPayload struct {
	SessionID string `json:"sessionId"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, "malformed", http.StatusBadRequest, "Invalid request body.")
		return
	}

	switch req.Action {
	case "initialize":
		s.handleInitialize(w, r, req.Payload)
	case "sendMessage":
		s.handleSendMessage(w, r, req.Payload)
	case "endSession":
		s.handleEndSession(w, r, req.Payload)
	default:
		s.log.Warn().Str("action", req.Action).Msg("invalid action")
		s.respondError(w, req.Action, http.StatusBadRequest, "Invalid action specified.")
	}
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var p initializePayload
	if err := json.Unmarshal(raw, &p); err != nil || strings.TrimSpace(p.StoreName) == "" || strings.TrimSpace(p.StoreDomain) == "" {
		s.respondError(w, "initialize", http.StatusBadRequest, "Missing storeName or storeDomain for initialization.")
		return
	}

	text, sessionID, err := s.advisor.Initialize(r.Context(), p.StoreName, p.StoreDomain)
	if err != nil {
		status, msg := classify(err)
		logging.With(r.Context(), s.log).Error().Err(err).Msg("initialize failed")
		s.respondError(w, "initialize", status, msg)
		return
	}

	s.respondJSON(w, "initialize", http.StatusOK, map[string]string{
		"text":      text,
		"sessionId": sessionID,
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var p sendMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.SessionID == "" {
		s.respondError(w, "sendMessage", http.StatusBadRequest, "Missing userMessage or sessionId.")
		return
	}
	if strings.TrimSpace(p.UserMessage) == "" {
		s.respondError(w, "sendMessage", http.StatusBadRequest, "User message cannot be empty.")
		return
	}

	ctx := logging.WithSessID(r.Context(), p.SessionID)

	if s.limiter != nil && s.limit > 0 {
		ok, err := s.limiter.Allow(ctx, redislim.SessionKey(p.SessionID), s.limit, s.window)
		if err != nil {
			// Fail open: the limiter is protection, not a dependency.
			logging.With(ctx, s.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			s.respondError(w, "sendMessage", http.StatusTooManyRequests, "You are sending messages too quickly. Please wait a moment and try again.")
			return
		}
	}

	text, err := s.advisor.SendMessage(ctx, p.SessionID, p.UserMessage)
	if err != nil {
		status, msg := classify(err)
		logging.With(ctx, s.log).Error().Err(err).Msg("send message failed")
		s.respondError(w, "sendMessage", status, msg)
		return
	}

	s.respondJSON(w, "sendMessage", http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request, raw json.RawMessage) {
	var p endSessionPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.SessionID == "" {
		s.respondError(w, "endSession", http.StatusBadRequest, "Missing sessionId.")
		return
	}

	if err := s.advisor.EndSession(logging.WithSessID(r.Context(), p.SessionID), p.SessionID); err != nil {
		status, msg := classify(err)
		if status == http.StatusNotFound {
			msg = "Session not found or already ended."
		}
		s.respondError(w, "endSession", status, msg)
		return
	}

	s.respondJSON(w, "endSession", http.StatusOK, map[string]string{"message": "Session ended."})
}

func (s *Server) respondJSON(w http.ResponseWriter, action string, status int, body any) {
	metrics.ObserveChatRequest(action, status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) respondError(w http.ResponseWriter, action string, status int, msg string) {
	metrics.ObserveChatRequest(action, status)
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
