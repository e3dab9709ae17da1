package getImage

import (
	"context"
	"gallery/internal/http-server/handlers/image/imageerr"
	"gallery/internal/http-server/middleware/auth"
	"gallery/internal/lib/api/response"
	"gallery/internal/lib/logger/sl"
	"gallery/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"log/slog"
	"net/http"
)

type Response struct {
	response.Response
	Image *models.Image `json:"image,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageGetter
type ImageGetter interface {
	Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error)
}

// New returns a single image of the authenticated user.
// @Summary      Get an image
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Image ID"
// @Success      200  {object}  getImage.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images/{id} [get]
func New(log *slog.Logger, imageGetter ImageGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.getImage.New"

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

		image, err := imageGetter.Get(r.Context(), ownerID, imageID)
		if err != nil {
			imageerr.Render(w, r, log, err, "failed to get image")
			return
		}

		log.Info("image retrieved successfully", slog.String("image_id", imageID.String()))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Image:    image,
		})
	}
}
