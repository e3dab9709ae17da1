// Package imageerr renders gallery errors as API responses.
package imageerr

import (
	"errors"
	"gallery/internal/gallery"
	"gallery/internal/lib/api/response"
	"gallery/internal/lib/logger/sl"
	"gallery/internal/storage"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

// Render writes the status matching err. internalMsg is sent for unexpected errors.
func Render(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, internalMsg string) {
	var verr *gallery.ValidationError

	switch {
	case errors.As(err, &verr):
		log.Info("request failed validation", slog.Any("fields", verr.Fields))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Invalid(verr.Fields))
	case errors.Is(err, storage.ErrImageNotFound):
		log.Warn("image not found", sl.Err(err))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("image not found"))
	case errors.Is(err, gallery.ErrNoOwner):
		log.Warn("request without owner", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
	default:
		log.Error(internalMsg, sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(internalMsg))
	}
}

// Unauthorized is written when a handler runs without an authenticated owner.
func Unauthorized(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	log.Warn("missing owner in request context")
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error("unauthorized"))
}
