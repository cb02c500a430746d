package main

import (
	"fmt"
	"log"
	"net/http"

	"cstutor/auth"
	"cstutor/config"
	"cstutor/db"
	"cstutor/handlers"
	"cstutor/ratelimit"
	"cstutor/services"
	"cstutor/services/agent"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	// The database is optional: without it the service still answers,
	// with entitlement enforcement and persistence degraded off.
	var userRepo db.UserRepository
	var chatRepo db.ChatRepository
	var progressService *services.ProgressService
	var usageRepo db.UsageRepository

	if cfg.DatabaseURL != "" {
		users, err := db.NewPostgresUserRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize user database: %v", err)
		}
		defer users.Close()
		userRepo = users

		usage, err := db.NewPostgresUsageRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize usage database: %v", err)
		}
		defer usage.Close()
		usageRepo = usage

		chats, err := db.NewPostgresChatRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize chat database: %v", err)
		}
		defer chats.Close()
		chatRepo = chats

		events, err := db.NewPostgresLearningEventRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize learning event database: %v", err)
		}
		defer events.Close()
		progressService = services.NewProgressService(events)
	} else {
		log.Printf("[WARN] DATABASE_URL not set: entitlements unenforced, history not persisted")
		usageRepo = db.NewInMemoryUsageRepository()
	}

	entitlementService := services.NewEntitlementService(userRepo, usageRepo, cfg.FreeDailyLimit)
	demoService := services.NewDemoService(cfg.OpenAIAPIKey)

	var agentService *agent.Service
	if cfg.AnthropicAPIKey != "" {
		svc, err := agent.NewService(cfg.AnthropicAPIKey, progressService, cfg.TutorModel, cfg.MaxOutputTokens, cfg.MaxAgentSteps)
		if err != nil {
			log.Fatalf("Failed to initialize agent service: %v", err)
		}
		agentService = svc
	} else {
		log.Printf("[WARN] ANTHROPIC_API_KEY not set: tutor endpoints will report misconfiguration")
	}

	limiter := ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax)
	defer limiter.Stop()

	requireAuth := auth.Middleware([]byte(cfg.JWTSecret))
	throttle := ratelimit.Middleware(limiter, func(r *http.Request) string {
		if userID, ok := auth.UserIDFromContext(r.Context()); ok {
			return fmt.Sprintf("user:%d", userID)
		}
		return r.RemoteAddr
	})

	tutorHandler := handlers.NewTutorHandler(agentService, entitlementService, demoService, usageRepo, chatRepo, cfg)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	tutorHandler.RegisterRoutes(router, requireAuth, throttle)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
