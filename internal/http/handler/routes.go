package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filesmanager/internal/http/middleware"
	"filesmanager/internal/service"
	"filesmanager/internal/session"
)

// Deps are the handles the HTTP surface is built on.
type Deps struct {
	DB       *sql.DB
	Sessions session.Store
	Auth     service.AuthService
	Files    service.FileService
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB, d.Sessions))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	auth := middleware.Auth(d.Sessions)

	app.Post("/users", CreateUser(d.Auth))
	app.Get("/users/me", auth, Me(d.Auth))
	app.Get("/connect", Connect(d.Auth))
	app.Get("/disconnect", Disconnect(d.Auth))

	files := app.Group("/files", auth)
	files.Post("", UploadFile(d.Files))
	files.Get("", ListFiles(d.Files))
	files.Get("/:id", GetFile(d.Files))
	files.Put("/:id/publish", SetVisibility(d.Files, true))
	files.Put("/:id/unpublish", SetVisibility(d.Files, false))
}
