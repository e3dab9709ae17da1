package router

import (
	_ "gallery/docs"
	"gallery/internal/http-server/handlers/image/deleteImage"
	"gallery/internal/http-server/handlers/image/getImage"
	"gallery/internal/http-server/handlers/image/listImages"
	"gallery/internal/http-server/handlers/image/saveImage"
	"gallery/internal/http-server/handlers/image/updateImage"
	"gallery/internal/http-server/middleware/auth"
	"gallery/internal/http-server/middleware/mwlogger"
	mwratelimit "gallery/internal/http-server/middleware/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/juju/ratelimit"
	httpSwagger "github.com/swaggo/http-swagger"
	"log/slog"
	"net/http"
)

// Service is everything the image routes need from the gallery.
type Service interface {
	listImages.ImagesLister
	getImage.ImageGetter
	saveImage.ImageSaver
	updateImage.ImageUpdater
	deleteImage.ImageDeleter
}

type Options struct {
	JWTSecret      []byte
	MaxUploadBytes int64
	// Limiter throttles write requests. Nil disables rate limiting.
	Limiter *ratelimit.Bucket
	// Files serves stored images under FilesPrefix. Nil when the disk is not local.
	Files       http.Handler
	FilesPrefix string
}

func New(log *slog.Logger, svc Service, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if opts.Files != nil {
		router.Handle(opts.FilesPrefix+"/*", opts.Files)
	}

	router.Route("/images", func(r chi.Router) {
		r.Use(auth.New(log, opts.JWTSecret))

		r.Get("/", listImages.New(log, svc))
		r.Get("/{id}", getImage.New(log, svc))

		r.Group(func(r chi.Router) {
			if opts.Limiter != nil {
				r.Use(mwratelimit.New(log, opts.Limiter))
			}

			update := updateImage.New(log, svc, opts.MaxUploadBytes)

			r.Post("/", saveImage.New(log, svc, opts.MaxUploadBytes))
			r.Put("/{id}", update)
			r.Post("/{id}", update)
			r.Delete("/{id}", deleteImage.New(log, svc))
		})
	})

	return router
}
