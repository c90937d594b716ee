package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	captureHandler "github.com/viblyapp/vibly/backend/internal/handler/capture"
	conversationHandler "github.com/viblyapp/vibly/backend/internal/handler/conversation"
	personaHandler "github.com/viblyapp/vibly/backend/internal/handler/persona"
	personaModel "github.com/viblyapp/vibly/backend/internal/model/persona"
	"github.com/viblyapp/vibly/backend/internal/service/session"
	"github.com/viblyapp/vibly/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, sessions *session.Manager, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		conversationHandler.New(sessions).RegisterRoutes(api)
		captureHandler.New(sessions, log).RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
