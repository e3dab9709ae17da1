// Package galleryview holds the client side state of the gallery screen: the
// loaded images, the add/edit form and the record being edited.
package galleryview

import (
	"context"
	"errors"
	"fmt"
	"gallery/internal/lib/logger/sl"
	"gallery/internal/models"
	"github.com/google/uuid"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	ErrUnknownImage = errors.New("image is not loaded")
	ErrNotEditing   = errors.New("no image is being edited")
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=API
type API interface {
	ListImages(ctx context.Context) ([]models.Image, error)
	CreateImage(ctx context.Context, title, src string) (*models.Image, error)
	UploadImage(ctx context.Context, title, fileName string, r io.Reader) (*models.Image, error)
	UpdateImage(ctx context.Context, id uuid.UUID, title, src *string) (*models.Image, error)
	ReplaceImageFile(ctx context.Context, id uuid.UUID, title *string, fileName string, r io.Reader) (*models.Image, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

// Form is what the user typed. FilePath wins over Src when both are set.
type Form struct {
	Title    string
	Src      string
	FilePath string
}

// ConfirmFunc is asked before an image is deleted.
type ConfirmFunc func(image models.Image) bool

// View is not safe for concurrent use.
type View struct {
	Images    []models.Image
	Form      Form
	EditingID *uuid.UUID

	log     *slog.Logger
	api     API
	confirm ConfirmFunc
	open    func(name string) (io.ReadCloser, error)
}

func New(log *slog.Logger, api API, confirm ConfirmFunc) *View {
	return &View{
		Images:  []models.Image{},
		log:     log,
		api:     api,
		confirm: confirm,
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
}

// Mount loads the full list of images.
func (v *View) Mount(ctx context.Context) error {
	const op = "galleryview.Mount"

	log := v.log.With(slog.String("op", op))

	images, err := v.api.ListImages(ctx)
	if err != nil {
		log.Error("failed to fetch images", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	v.Images = images

	return nil
}

// Add submits the form as a new image, then reloads the list.
func (v *View) Add(ctx context.Context) error {
	const op = "galleryview.Add"

	log := v.log.With(slog.String("op", op))

	var err error
	if v.Form.FilePath != "" {
		err = v.withFile(v.Form.FilePath, func(name string, r io.Reader) error {
			_, err := v.api.UploadImage(ctx, v.Form.Title, name, r)
			return err
		})
	} else {
		_, err = v.api.CreateImage(ctx, v.Form.Title, v.Form.Src)
	}
	if err != nil {
		log.Error("failed to add image", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	v.Form = Form{}

	if err = v.Mount(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Edit fills the form from a loaded image and switches to edit mode.
func (v *View) Edit(id uuid.UUID) error {
	const op = "galleryview.Edit"

	image, ok := v.find(id)
	if !ok {
		v.log.Error("failed to edit image", slog.String("op", op), slog.String("image_id", id.String()), sl.Err(ErrUnknownImage))
		return fmt.Errorf("%s: %s: %w", op, id, ErrUnknownImage)
	}

	v.Form = Form{
		Title: image.Title,
		Src:   image.FileURL,
	}
	v.EditingID = &id

	return nil
}

// Cancel leaves edit mode without touching the server.
func (v *View) Cancel() {
	v.Form = Form{}
	v.EditingID = nil
}

// Update sends the edited fields and replaces the local record with the result.
// Src is only sent when it differs from the loaded file URL.
func (v *View) Update(ctx context.Context) error {
	const op = "galleryview.Update"

	log := v.log.With(slog.String("op", op))

	if v.EditingID == nil {
		log.Error("failed to update image", sl.Err(ErrNotEditing))
		return fmt.Errorf("%s: %w", op, ErrNotEditing)
	}

	id := *v.EditingID
	current, ok := v.find(id)
	if !ok {
		log.Error("failed to update image", slog.String("image_id", id.String()), sl.Err(ErrUnknownImage))
		return fmt.Errorf("%s: %s: %w", op, id, ErrUnknownImage)
	}

	title := v.Form.Title

	var updated *models.Image
	var err error

	switch {
	case v.Form.FilePath != "":
		err = v.withFile(v.Form.FilePath, func(name string, r io.Reader) error {
			updated, err = v.api.ReplaceImageFile(ctx, id, &title, name, r)
			return err
		})
	case v.Form.Src != "" && v.Form.Src != current.FileURL:
		src := v.Form.Src
		updated, err = v.api.UpdateImage(ctx, id, &title, &src)
	default:
		updated, err = v.api.UpdateImage(ctx, id, &title, nil)
	}
	if err != nil {
		log.Error("failed to update image", slog.String("image_id", id.String()), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	for i := range v.Images {
		if v.Images[i].ID == id {
			v.Images[i] = *updated
			break
		}
	}

	v.Cancel()

	return nil
}

// Delete removes an image after confirmation. A declined confirmation is not an error.
func (v *View) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "galleryview.Delete"

	log := v.log.With(slog.String("op", op), slog.String("image_id", id.String()))

	image, ok := v.find(id)
	if !ok {
		log.Error("failed to delete image", sl.Err(ErrUnknownImage))
		return fmt.Errorf("%s: %s: %w", op, id, ErrUnknownImage)
	}

	if v.confirm != nil && !v.confirm(image) {
		log.Debug("deletion declined")
		return nil
	}

	if err := v.api.DeleteImage(ctx, id); err != nil {
		log.Error("failed to delete image", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	images := make([]models.Image, 0, len(v.Images))
	for _, img := range v.Images {
		if img.ID != id {
			images = append(images, img)
		}
	}
	v.Images = images

	if v.EditingID != nil && *v.EditingID == id {
		v.Cancel()
	}

	return nil
}

func (v *View) find(id uuid.UUID) (models.Image, bool) {
	for _, img := range v.Images {
		if img.ID == id {
			return img, true
		}
	}
	return models.Image{}, false
}

func (v *View) withFile(path string, fn func(name string, r io.Reader) error) error {
	f, err := v.open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return fn(filepath.Base(path), f)
}
