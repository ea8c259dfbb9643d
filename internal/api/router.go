package api

import (
	"net/http"
	"time"

	"msgboard/internal/api/handler"
	"msgboard/internal/api/middleware"
	"msgboard/internal/app/service"
	"msgboard/internal/logging"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Options carries the non-service pieces the router needs.
type Options struct {
	Log            logging.Logger
	Production     bool
	RequestTimeout time.Duration
	// Uploads serves stored files under /<UploadsPrefix>/; nil when blobs live elsewhere.
	Uploads       http.Handler
	UploadsPrefix string
	PublicDir     string
}

func NewRouter(
	authService *service.AuthService,
	messageService *service.MessageService,
	imageService *service.ImageService,
	logService *service.LogService,
	opts Options,
) http.Handler {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log, opts.Production))
	r.Use(chiMiddleware.Timeout(timeout))

	requireAuth := middleware.Authenticator(authService, log, opts.Production)

	r.Get("/health", handler.Health)

	if opts.Uploads != nil && opts.UploadsPrefix != "" {
		r.Handle("/"+opts.UploadsPrefix+"/*", opts.Uploads)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/hello", handler.Hello)

		authHandler := handler.NewAuthHandler(authService, log, opts.Production)
		api.Route("/auth", func(ar chi.Router) {
			authHandler.RegisterRoutes(ar, requireAuth)
		})

		messageHandler := handler.NewMessageHandler(messageService, log, opts.Production)
		api.Route("/messages", messageHandler.RegisterRoutes)

		imageHandler := handler.NewImageHandler(imageService, log, opts.Production)
		api.Route("/images", func(ir chi.Router) {
			imageHandler.RegisterRoutes(ir, requireAuth)
		})

		logHandler := handler.NewLogHandler(logService, log, opts.Production)
		api.Group(func(authed chi.Router) {
			authed.Use(requireAuth)
			authed.Get("/protected", handler.Protected)

			authed.Group(func(admin chi.Router) {
				admin.Use(middleware.AdminOnly)
				admin.Get("/admin", handler.Admin)
				admin.Get("/logs", logHandler.ListLogs)
			})
		})
	})

	static := handler.NewStaticSite(opts.PublicDir)
	r.NotFound(static.ServeHTTP)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
