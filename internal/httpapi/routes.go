package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/hub"
	"github.com/DoyleJ11/mapveto-backend/internal/i18n"
	"github.com/DoyleJ11/mapveto-backend/internal/mapimages"
	"github.com/DoyleJ11/mapveto-backend/internal/ws"
)

type Deps struct {
	Hub     *hub.Hub
	Images  *mapimages.Table
	Catalog *i18n.Catalog
	Logger  *zap.Logger
}

func SetupRoutes(d Deps) http.Handler {
	logger := d.Logger.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	// Veto state of the default session (or ?code=)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", GetState(d.Hub))
		r.Post("/state", SetState(d.Hub, logger))
		r.Delete("/state", ResetState(d.Hub))
		r.Post("/state/actions", ApplyAction(d.Hub))
		r.Post("/state/scores", SetScore(d.Hub))
		r.Get("/played-maps", PlayedMaps(d.Hub, d.Images))
		r.Get("/winner", Winner)
		r.Get("/maps", MapImages(d.Images))
		r.Get("/translations", Translations(d.Catalog))
	})

	r.Get("/set_language/{lang}", SetLanguage(d.Catalog))

	// Public routes
	r.Post("/sessions", CreateSession(d.Hub, logger))
	r.Delete("/sessions/{code}", DeleteSession(d.Hub))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Logger))
	return r
}
