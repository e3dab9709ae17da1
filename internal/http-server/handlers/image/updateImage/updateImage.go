package updateImage

import (
	"context"
	"errors"
	"gallery/internal/gallery"
	"gallery/internal/http-server/handlers/image/imageerr"
	"gallery/internal/http-server/middleware/auth"
	"gallery/internal/lib/api/request"
	"gallery/internal/lib/api/response"
	"gallery/internal/lib/logger/sl"
	"gallery/internal/models"
	"gallery/internal/upload"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
)

const maxMemory = 8 << 20

// Request holds the fields to change. Omitted fields are left as they are.
type Request struct {
	Title *string `json:"title,omitempty" validate:"omitnil,min=1,max=255"`
	Src   *string `json:"src,omitempty"`
}

type Response struct {
	response.Response
	Image *models.Image `json:"image,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageUpdater
type ImageUpdater interface {
	Update(ctx context.Context, ownerID string, id uuid.UUID, in gallery.UpdateInput) (*models.Image, error)
}

// New applies a partial update to an image of the authenticated user.
// @Summary      Update an image
// @Description  Renames an image and/or replaces its source. Accepts JSON or a multipart form with a file.
// @Tags         images
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true   "Image ID"
// @Param        request  body      updateImage.Request false  "Fields to change"
// @Param        title    formData  string              false  "Image title"
// @Param        file     formData  file                false  "Image file"
// @Success      200  {object}  updateImage.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images/{id} [put]
// @Router       /images/{id} [post]
func New(log *slog.Logger, imageUpdater ImageUpdater, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.updateImage.New"

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

		r.Body = http.MaxBytesReader(w, r.Body, request.BodyLimit(maxUploadBytes))

		var req Request
		var in gallery.UpdateInput

		if request.IsMultipart(r) {
			if err = r.ParseMultipartForm(maxMemory); err != nil {
				renderBodyError(w, r, log, "file", err, "failed to parse multipart form")
				return
			}
			defer func(form *multipart.Form) {
				_ = form.RemoveAll()
			}(r.MultipartForm)

			req.Title = formValue(r.MultipartForm, "title")
			req.Src = formValue(r.MultipartForm, "src")

			file, header, err := r.FormFile("file")
			switch {
			case err == nil:
				defer func(file multipart.File) {
					_ = file.Close()
				}(file)

				in.File = &upload.File{
					Name:        header.Filename,
					Size:        header.Size,
					ContentType: header.Header.Get("Content-Type"),
					Reader:      file,
				}
			case !errors.Is(err, http.ErrMissingFile):
				log.Error("failed to get file from request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("failed to get file from request"))
				return
			}
		} else {
			err = render.DecodeJSON(r.Body, &req)
			if err != nil && !errors.Is(err, io.EOF) {
				renderBodyError(w, r, log, "src", err, "failed to decode request")
				return
			}
		}

		if err = request.Validator().Struct(req); err != nil {
			log.Info("invalid request", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err))
			return
		}

		in.Title = req.Title
		in.Src = req.Src

		image, err := imageUpdater.Update(r.Context(), ownerID, imageID, in)
		if err != nil {
			imageerr.Render(w, r, log, err, "failed to update image")
			return
		}

		log.Info("image updated successfully", slog.String("image_id", imageID.String()))

		render.JSON(w, r, Response{
			Response: response.OK(),
			Image:    image,
		})
	}
}

// formValue distinguishes an absent form field from an empty one.
func formValue(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func renderBodyError(w http.ResponseWriter, r *http.Request, log *slog.Logger, field string, err error, msg string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		log.Info("request body too large", slog.Int64("limit", maxBytesErr.Limit))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Invalid(map[string]string{field: "the file is too large"}))
		return
	}

	log.Error(msg, sl.Err(err))
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(msg))
}
