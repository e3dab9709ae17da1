package saveImage

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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
)

// maxMemory is the part of a multipart body kept in memory, the rest spills to temp files.
const maxMemory = 8 << 20

type Request struct {
	Title string `json:"title" validate:"required,max=255"`
	Src   string `json:"src,omitempty"`
}

type Response struct {
	response.Response
	Image *models.Image `json:"image,omitempty"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=ImageSaver
type ImageSaver interface {
	Create(ctx context.Context, ownerID string, in gallery.CreateInput) (*models.Image, error)
}

// New creates an image for the authenticated user.
// @Summary      Upload an image
// @Description  Accepts JSON with a URL or base64 data URI in src, or a multipart form with a file.
// @Tags         images
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      saveImage.Request  false  "Title and source"
// @Param        title    formData  string             false  "Image title"
// @Param        file     formData  file               false  "Image file"
// @Success      201  {object}  saveImage.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /images [post]
func New(log *slog.Logger, imageSaver ImageSaver, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.image.saveImage.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ownerID, ok := auth.OwnerID(r.Context())
		if !ok {
			imageerr.Unauthorized(w, r, log)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, request.BodyLimit(maxUploadBytes))

		var req Request
		var in gallery.CreateInput

		if request.IsMultipart(r) {
			if err := r.ParseMultipartForm(maxMemory); err != nil {
				renderBodyError(w, r, log, "file", err, "failed to parse multipart form")
				return
			}
			defer func(form *multipart.Form) {
				_ = form.RemoveAll()
			}(r.MultipartForm)

			req.Title = r.FormValue("title")
			req.Src = r.FormValue("src")

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
			err := render.DecodeJSON(r.Body, &req)
			if errors.Is(err, io.EOF) {
				log.Error("request body is empty")
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("empty request"))
				return
			}
			if err != nil {
				renderBodyError(w, r, log, "src", err, "failed to decode request")
				return
			}
		}

		log.Debug("request parsed", slog.String("title", req.Title), slog.Bool("has_file", in.File != nil))

		if err := request.Validator().Struct(req); err != nil {
			log.Info("invalid request", sl.Err(err))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(err))
			return
		}

		in.Title = req.Title
		in.Src = req.Src

		image, err := imageSaver.Create(r.Context(), ownerID, in)
		if err != nil {
			imageerr.Render(w, r, log, err, "failed to save image")
			return
		}

		log.Info("image saved successfully", slog.String("image_id", image.ID.String()))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: response.OK(),
			Image:    image,
		})
	}
}

// renderBodyError reports an oversized body as a validation error on field and
// anything else as a bad request.
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
