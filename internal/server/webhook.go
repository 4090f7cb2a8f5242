package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dev-abubakarsharif/chatdotfun/internal/ratelimit"
)

// webhookRequest is one inbound chat message.
type webhookRequest struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// webhookResponse carries the reply text back to the messaging gateway.
type webhookResponse struct {
	Reply string `json:"reply"`
}

const replyRateLimited = "⏳ Slow down a little. Try again in a few seconds."

// handleWebhook decodes one message, applies the per-sender rate limit, and
// hands the text to the engine. The reply always comes back as 200 JSON so
// the gateway can relay it verbatim; only malformed requests and throttled
// senders get error statuses.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	req.From = strings.TrimSpace(req.From)
	if req.From == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing sender"})
		return
	}

	if !s.allow(r, req.From) {
		writeJSON(w, http.StatusTooManyRequests, webhookResponse{Reply: replyRateLimited})
		return
	}

	reply := s.engine.HandleIncoming(r.Context(), req.From, req.Body)
	writeJSON(w, http.StatusOK, webhookResponse{Reply: reply})
}

// allow consults the limiter. A denial comes back as ErrLimitExceeded next
// to the result; only backend failures fail open, so a broken Redis does not
// take the bot down.
func (s *Server) allow(r *http.Request, sender string) bool {
	if s.limiter == nil || !s.rateLimit.Enabled {
		return true
	}

	res, err := s.limiter.Check(r.Context(), sender, s.rateLimit.Limit, s.rateLimit.Window)
	if err != nil && !errors.Is(err, ratelimit.ErrLimitExceeded) {
		s.log.Warn("rate limit check failed",
			slog.String("sender", sender),
			slog.Any("error", err),
		)
		return true
	}

	return res != nil && res.Allowed
}
