/*
Package handler provides the HTTP handlers and routing setup for the collaboration server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"coderoom/internal/pkg/limiter"
	"coderoom/internal/pkg/logx"
	"coderoom/internal/pkg/resp"
)

const (
	MutateRate   = 5
	MutateBurst  = 20
	ConnectRate  = 0.5
	ConnectBurst = 10
)

// Limiters holds the IP-keyed limiters used by the router. They are owned by the
// caller so they can be stopped on shutdown.
type Limiters struct {
	Mutate  *limiter.KeyedLimiter
	Connect *limiter.KeyedLimiter
}

// NewLimiters builds the default IP limiters.
func NewLimiters() *Limiters {
	return &Limiters{
		Mutate:  limiter.New(rate.Limit(MutateRate), MutateBurst),
		Connect: limiter.New(rate.Limit(ConnectRate), ConnectBurst),
	}
}

// Stop ends the limiters' cleanup goroutines.
func (l *Limiters) Stop() {
	l.Mutate.Stop()
	l.Connect.Stop()
}

// Router sets up the main HTTP routing table (chi.Router) for the application.
func Router(deps *AppDeps, limiters *Limiters) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := deps.Hub.Stats()

		resp.RespondSuccess(w, r, map[string]any{
			"status":      "ok",
			"service":     "coderoom",
			"rooms":       stats.Rooms,
			"connections": stats.Connections,
		})
	})

	r.Get("/files", HandleGetTree(deps))
	r.Get("/files/content", HandleGetFileContent(deps))

	r.Group(func(mutating chi.Router) {
		mutating.Use(limiters.Mutate.Middleware)

		mutating.Post("/folders", HandleCreateFolder(deps))
		mutating.Post("/files", HandleCreateFile(deps))
		mutating.Delete("/files", HandleDeletePath(deps))
	})

	r.Route("/rooms", func(rooms chi.Router) {
		rooms.Get("/new", HandleNewRoom())

		rooms.Route("/{roomId}", func(room chi.Router) {
			room.Get("/", HandleRoomInfo(deps))
			room.Get("/executions", HandleListExecutions(deps))

			room.With(limiters.Mutate.Middleware).Post("/snapshots", HandleCreateSnapshot(deps))
			room.With(limiters.Mutate.Middleware).Post("/snapshots/restore", HandleRestoreSnapshot(deps))
		})
	})

	r.With(limiters.Connect.Middleware).Get("/ws", HandleWebSocket(deps.Hub, wsUpgrader))

	return r
}
