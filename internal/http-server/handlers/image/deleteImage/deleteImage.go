package deleteImage

import (
	"context"
	"gallery/internal/http-server/handlers/image/imageerr"
	"gallery/internal/http-server/middleware/auth"
	"gallery/internal/lib/api/response"
	"gallery/internal/lib/logger/sl"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"log/slog"
	"net/http"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageDeleter
type ImageDeleter interface {
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

type Response struct {
	response.Response
}

// New deletes an image of the authenticated user.
// @Summary      Delete an image
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Image ID"
// @Success      200  {object}  deleteImage.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images/{id} [delete]
func New(log *slog.Logger, imageDeleter ImageDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.deleteImage.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ownerID, ok := auth.OwnerID(r.Context())
		if !ok {
			imageerr.Unauthorized(w, r, log)
			return
		}

		idStr := chi.URLParam(r, "id")
		imageID, err := uuid.Parse(idStr)
		if err != nil {
			log.Error("failed to parse image ID", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid image ID"))
			return
		}

		log.Info("attempting to delete image", slog.String("image_id", imageID.String()))

		err = imageDeleter.Delete(r.Context(), ownerID, imageID)
		if err != nil {
			imageerr.Render(w, r, log, err, "failed to delete image")
			return
		}

		log.Info("image deleted successfully", slog.String("image_id", imageID.String()))

		render.JSON(w, r, Response{
			Response: response.OK(),
		})
	}
}
