package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/k3ss-official/total-recall/internal/api"
	apimiddleware "github.com/k3ss-official/total-recall/internal/api/middleware"
	"github.com/k3ss-official/total-recall/internal/api/ws"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.authenticator, app.jwtService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	taskHandler := api.NewTaskHandler(app.tracker, app.processingService, app.injectionService, app.logger)
	processingHandler := api.NewProcessingHandler(app.processingService, app.logger)
	injectionHandler := api.NewInjectionHandler(app.injectionService, app.logger)
	conversationHandler := api.NewConversationHandler(app.conversationService, app.logger)
	exportHandler := api.NewExportHandler(app.exportService, app.logger)
	wsHandler := ws.NewHandler(app.hub, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Push channel: browsers cannot set an Authorization header on a
		// websocket upgrade, and delivery is best-effort status data only.
		r.Get("/ws/{clientID}", wsHandler.Serve)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/status", authHandler.Status)

			r.Post("/tasks", taskHandler.Create)
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/{taskID}", taskHandler.Get)
			r.Post("/tasks/{taskID}/cancel", taskHandler.Cancel)

			r.Post("/processing/process", processingHandler.Process)
			r.Post("/injection/inject", injectionHandler.Inject)

			r.Get("/conversations", conversationHandler.List)
			r.Get("/conversations/search/{query}", conversationHandler.Search)
			r.Get("/conversations/{conversationID}", conversationHandler.Get)

			r.Post("/export", exportHandler.Create)
			r.Get("/export/{exportID}/download", exportHandler.Download)
		})
	})

	// Operational endpoints
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Handle("/metrics", app.metrics.Handler())

	return r
}
