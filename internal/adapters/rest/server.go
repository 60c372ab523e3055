package rest

import (
	"context"
	"fmt"
	core_ports "listing-organizer/internal/core/port"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Wizard   *WizardHandlers
	Board    *BoardHandlers
	Property *PropertyHandlers
}

type Server struct {
	httpServer *http.Server
	logger     core_ports.LoggerPort
}

func NewServer(port string, allowedOrigins []string, handlers Handlers, baseLogger core_ports.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + port,
			Handler: NewRouter(allowedOrigins, handlers, baseLogger),
		},
		logger: baseLogger,
	}
}

// NewRouter собирает все маршруты сервиса, вынесен отдельно для тестов.
func NewRouter(allowedOrigins []string, handlers Handlers, baseLogger core_ports.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware)

		r.Route("/wizards", func(r chi.Router) {
			r.Post("/", handlers.Wizard.CreateWizard)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", handlers.Wizard.GetWizard)
				r.Delete("/", handlers.Wizard.Dismiss)
				r.Post("/start", handlers.Wizard.StartWizard)
				r.Post("/next", handlers.Wizard.NextStep)
				r.Post("/back", handlers.Wizard.PreviousStep)
				r.Post("/import", handlers.Wizard.StartImport)
				r.Patch("/fields", handlers.Wizard.RegisterFields)
				r.Get("/steps/{step}/validation", handlers.Wizard.ValidateStep)
				r.Post("/images", handlers.Wizard.UploadImages)
				r.Post("/submit", handlers.Wizard.Submit)
			})
		})

		r.Route("/boards", func(r chi.Router) {
			r.Get("/", handlers.Board.GetBoards)
			r.Put("/filters", handlers.Board.SetFilters)
			r.Post("/moves", handlers.Board.MoveCard)
			r.Post("/properties/{propertyID}/unavailable", handlers.Board.MarkUnavailable)
			r.Put("/properties/{propertyID}/bucket", handlers.Board.ReassignBucket)
		})

		r.Get("/properties/{propertyID}", handlers.Property.GetProperty)
	})

	return r
}

// Start запускает HTTP-сервер
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_ports.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
