package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"cstutor/auth"
	"cstutor/config"
	"cstutor/db"
	"cstutor/models"
	"cstutor/services"
	"cstutor/services/agent"

	"github.com/gorilla/mux"
)

type TutorHandler struct {
	agent        *agent.Service
	entitlements *services.EntitlementService
	demo         *services.DemoService
	usage        db.UsageRepository
	chats        db.ChatRepository

	requestTimeout   time.Duration
	streamChunkSize  int
	streamChunkDelay time.Duration
}

func NewTutorHandler(agentService *agent.Service, entitlements *services.EntitlementService, demo *services.DemoService, usage db.UsageRepository, chats db.ChatRepository, cfg *config.Config) *TutorHandler {
	return &TutorHandler{
		agent:            agentService,
		entitlements:     entitlements,
		demo:             demo,
		usage:            usage,
		chats:            chats,
		requestTimeout:   cfg.RequestTimeout,
		streamChunkSize:  cfg.StreamChunkSize,
		streamChunkDelay: cfg.StreamChunkDelay,
	}
}

// RegisterRoutes wires the tutor endpoints. The demo endpoint is public;
// the tutor endpoints require auth, and everything is throttled.
func (h *TutorHandler) RegisterRoutes(router *mux.Router, requireAuth, throttle func(http.Handler) http.Handler) {
	router.Handle("/api/tutor/demo", throttle(http.HandlerFunc(h.DemoTutor))).Methods("POST")
	router.Handle("/api/tutor", requireAuth(throttle(http.HandlerFunc(h.Tutor)))).Methods("POST")
	router.Handle("/api/tutor/stream", requireAuth(throttle(http.HandlerFunc(h.TutorStream)))).Methods("POST")
}

type resolvedRequest struct {
	message string
	level   models.Level
	topic   string
	mode    models.Mode
}

func (h *TutorHandler) parseRequest(w http.ResponseWriter, r *http.Request) (*resolvedRequest, bool) {
	var req models.TutorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode tutor request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	if req.Message == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "Missing 'message' string")
		return nil, false
	}

	level := services.NormalizeLevel(req.Level)
	return &resolvedRequest{
		message: req.Message,
		level:   level,
		topic:   services.NormalizeTopic(level, req.Topic),
		mode:    services.NormalizeMode(req.Mode),
	}, true
}

func (h *TutorHandler) Tutor(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	decision := h.entitlements.ResolveAccess(userID, req.mode, false)
	if !decision.Allowed {
		h.writeDenial(w, decision)
		return
	}

	if h.agent == nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "ANTHROPIC_API_KEY is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	reply, err := h.generate(ctx, userID, req, false)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.writeErrorResponse(w, http.StatusGatewayTimeout, "Tutor request timed out, please try again")
			return
		}
		log.Printf("[ERROR] Tutor generation failed for user %d: %v", userID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "LLM failed")
		return
	}

	h.recordTurn(userID, req, reply)

	usage := decision.Usage
	if usage.Limit >= 0 {
		usage.Used++
		if usage.Remaining > 0 {
			usage.Remaining--
		}
	}

	h.writeJSONResponse(w, http.StatusOK, models.TutorResponse{Reply: reply, Usage: &usage})
}

func (h *TutorHandler) TutorStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	decision := h.entitlements.ResolveAccess(userID, req.mode, true)
	if !decision.Allowed {
		h.writeDenial(w, decision)
		return
	}

	if h.agent == nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "ANTHROPIC_API_KEY is not configured")
		return
	}

	// The stream is compute-then-chunk: the whole reply is generated
	// first, so the persisted record always matches what was streamed.
	// No hard deadline here, chunk pacing alone stretches wall time.
	reply, err := h.generate(r.Context(), userID, req, true)
	if err != nil {
		log.Printf("[ERROR] Stream generation failed for user %d: %v", userID, err)
		h.writeErrorResponse(w, http.StatusInternalServerError, "LLM failed")
		return
	}

	h.recordTurn(userID, req, reply)

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		h.writeJSONResponse(w, http.StatusOK, models.TutorResponse{Reply: reply})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	runes := []rune(reply)
	for start := 0; start < len(runes); start += h.streamChunkSize {
		end := start + h.streamChunkSize
		if end > len(runes) {
			end = len(runes)
		}

		if err := writeStreamEvent(w, models.StreamChunk{Delta: string(runes[start:end])}); err != nil {
			log.Printf("[WARN] Client disconnected mid-stream for user %d, stopping emission", userID)
			return
		}
		flusher.Flush()

		if end < len(runes) {
			select {
			case <-r.Context().Done():
				log.Printf("[WARN] Client cancelled stream for user %d, stopping emission", userID)
				return
			case <-time.After(h.streamChunkDelay):
			}
		}
	}

	if err := writeStreamEvent(w, models.StreamChunk{Done: true}); err == nil {
		flusher.Flush()
	}
}

func (h *TutorHandler) DemoTutor(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	systemPrompt := agent.BuildSystemPrompt(req.level, req.topic, req.mode, false)
	reply := h.demo.Respond(r.Context(), systemPrompt, req.message, req.mode)

	h.writeJSONResponse(w, http.StatusOK, models.TutorResponse{Reply: reply})
}

// generate runs prompt building, the agent loop (with the direct
// responder as the fallback tier) and the level guard.
func (h *TutorHandler) generate(ctx context.Context, userID int, req *resolvedRequest, preferConcise bool) (string, error) {
	systemPrompt := agent.BuildSystemPrompt(req.level, req.topic, req.mode, preferConcise)
	tc := agent.ToolContext{
		UserID: userID,
		Level:  req.level,
		Topic:  req.topic,
		Mode:   req.mode,
	}

	reply, err := h.agent.Generate(ctx, tc, systemPrompt, req.message)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		log.Printf("[WARN] Agent loop failed for user %d, falling back to direct response: %v", userID, err)
		reply, err = h.agent.RespondDirect(ctx, systemPrompt, req.message)
		if err != nil {
			return "", err
		}
	}

	return h.agent.EnforceLevelContainment(ctx, reply, req.level, req.topic), nil
}

// recordTurn consumes quota and persists the exchange. Both writes are
// best-effort: the student already has the reply, so failures are logged
// and swallowed.
func (h *TutorHandler) recordTurn(userID int, req *resolvedRequest, reply string) {
	if h.usage != nil {
		if err := h.usage.IncrementToday(userID); err != nil {
			log.Printf("[ERROR] Failed to increment usage for user %d: %v", userID, err)
		}
	}

	if h.chats == nil {
		return
	}

	userTurn := &models.ChatTurn{
		UserID:  userID,
		Role:    "user",
		Content: req.message,
		Level:   string(req.level),
		Topic:   req.topic,
		Mode:    string(req.mode),
	}
	assistantTurn := &models.ChatTurn{
		UserID:  userID,
		Role:    "assistant",
		Content: reply,
		Level:   string(req.level),
		Topic:   req.topic,
		Mode:    string(req.mode),
	}

	if err := h.chats.InsertTurnPair(userTurn, assistantTurn); err != nil {
		log.Printf("[ERROR] Failed to persist chat turns for user %d: %v", userID, err)
	}
}

func writeStreamEvent(w http.ResponseWriter, chunk models.StreamChunk) error {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

func (h *TutorHandler) writeDenial(w http.ResponseWriter, decision *services.AccessDecision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(decision.Status)
	json.NewEncoder(w).Encode(map[string]any{
		"error":     decision.Message,
		"code":      decision.Code,
		"plan":      decision.Usage.Plan,
		"used":      decision.Usage.Used,
		"limit":     decision.Usage.Limit,
		"remaining": decision.Usage.Remaining,
	})
}

func (h *TutorHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *TutorHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
