package listImages

import (
	"context"
	"gallery/internal/http-server/handlers/image/imageerr"
	"gallery/internal/http-server/middleware/auth"
	"gallery/internal/lib/api/response"
	"gallery/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

type Response struct {
	response.Response
	Images []models.Image `json:"images"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImagesLister
type ImagesLister interface {
	List(ctx context.Context, ownerID string) ([]models.Image, error)
}

// New lists every image of the authenticated user.
// @Summary      List images
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listImages.Response
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images [get]
func New(log *slog.Logger, lister ImagesLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.listImages.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ownerID, ok := auth.OwnerID(r.Context())
		if !ok {
			imageerr.Unauthorized(w, r, log)
			return
		}

		images, err := lister.List(r.Context(), ownerID)
		if err != nil {
			imageerr.Render(w, r, log, err, "failed to list images")
			return
		}

		if images == nil {
			images = []models.Image{}
		}

		log.Debug("images listed", slog.Int("count", len(images)))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Images:   images,
		})
	}
}
