// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/iyunix/go-gptchat/internal/identity"
	"github.com/iyunix/go-gptchat/internal/middleware"
	"github.com/iyunix/go-gptchat/internal/ratelimit"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	Auth      *AuthHandler
	Chat      *ChatHandler
	CustomGPT *CustomGPTHandler
	Log       *LogHandler
	Resolver  *identity.Resolver
	Logger    Logger

	// Nil limiters disable rate limiting for their routes.
	ChatLimiter ratelimit.Limiter
	AuthLimiter ratelimit.Limiter

	AllowedOrigins []string
}

// NewRouter wires routes and middleware into one handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RecoverPanic(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.ResolveIdentity(cfg.Resolver))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/log", cfg.Log.LogClientEvent).Methods("POST")

	// --- Auth ---
	authLimit := limit(cfg.AuthLimiter, "auth", middleware.KeyByIP, cfg.Logger)
	api.Handle("/auth/signup", authLimit(http.HandlerFunc(cfg.Auth.SignUp))).Methods("POST")
	loginReset := func(next http.Handler) http.Handler { return next }
	if cfg.AuthLimiter != nil {
		loginReset = middleware.AuthSuccessMiddleware(cfg.AuthLimiter, "auth", middleware.KeyByIP)
	}
	api.Handle("/auth/login", authLimit(loginReset(http.HandlerFunc(cfg.Auth.Login)))).Methods("POST")
	api.Handle("/auth/sync", authLimit(http.HandlerFunc(cfg.Auth.Sync))).Methods("POST")
	api.Handle("/auth/me", middleware.RequireAuth(http.HandlerFunc(cfg.Auth.Me))).Methods("GET")
	api.Handle("/auth/me", middleware.RequireAuth(http.HandlerFunc(cfg.Auth.UpdateMe))).Methods("PATCH")

	// --- Chat: users and guests ---
	chatLimit := limit(cfg.ChatLimiter, "chat", middleware.KeyByIdentity, cfg.Logger)
	api.Handle("/chat", chatLimit(http.HandlerFunc(cfg.Chat.SendMessage))).Methods("POST")
	api.Handle("/chat/stream", chatLimit(http.HandlerFunc(cfg.Chat.StreamMessage))).Methods("POST")

	api.HandleFunc("/chats", cfg.Chat.GetUserChats).Methods("GET")
	api.HandleFunc("/chats/{id}", cfg.Chat.GetChat).Methods("GET")
	api.HandleFunc("/chats/{id}", cfg.Chat.RenameChat).Methods("PATCH")
	api.HandleFunc("/chats/{id}", cfg.Chat.DeleteChat).Methods("DELETE")
	api.HandleFunc("/chats/{id}/messages", cfg.Chat.GetChatMessages).Methods("GET")

	// --- Custom GPTs: browsing is open to guests, the rest needs an account ---
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	gpts := api.PathPrefix("/custom-gpts").Subrouter()
	gpts.HandleFunc("/public", cfg.CustomGPT.ListPublic).Methods("GET")
	gpts.Handle("/starred", authed(cfg.CustomGPT.ListStarred)).Methods("GET")
	gpts.Handle("", authed(cfg.CustomGPT.List)).Methods("GET")
	gpts.Handle("", authed(cfg.CustomGPT.Create)).Methods("POST")
	gpts.HandleFunc("/{id}", cfg.CustomGPT.Get).Methods("GET")
	gpts.Handle("/{id}", authed(cfg.CustomGPT.Update)).Methods("PUT")
	gpts.Handle("/{id}", authed(cfg.CustomGPT.Delete)).Methods("DELETE")
	gpts.Handle("/{id}/star", authed(cfg.CustomGPT.Star)).Methods("POST", "DELETE")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Chat-Id", "X-Chat-Title", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           86400,
	})(r)
}

func limit(limiter ratelimit.Limiter, name string, key middleware.KeyFunc, logger Logger) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimitMiddleware(limiter, name, key, logger)
}
