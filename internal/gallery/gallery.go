// Package gallery implements the image gallery use cases on top of a record
// store and the upload normalizer. Every operation is scoped to an owner.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"gallery/internal/lib/logger/sl"
	"gallery/internal/models"
	"gallery/internal/upload"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"log/slog"
	"strings"
	"time"
)

const MaxTitleLength = 255

var ErrNoOwner = errors.New("owner is not set")

type Store interface {
	ListImages(ctx context.Context, ownerID string) ([]models.Image, error)
	SaveImage(ctx context.Context, ownerID, title, fileName, fileURL string) (*models.Image, error)
	GetImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error)
	UpdateImage(ctx context.Context, ownerID string, id uuid.UUID, patch models.ImagePatch) (*models.Image, error)
	DeleteImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error)
}

type Normalizer interface {
	StoreFile(ctx context.Context, f upload.File) (*upload.Stored, error)
	StoreSource(ctx context.Context, src string) (*upload.Stored, error)
	Remove(ctx context.Context, fileURL string) error
}

type Notifier interface {
	Notify(ctx context.Context, event models.ImageEvent) error
}

// CreateInput carries a new image. Exactly one of Src and File must be set.
type CreateInput struct {
	Title string
	Src   string
	File  *upload.File
}

// UpdateInput carries a partial update. Nil fields are left unchanged and at
// most one of Src and File may be set.
type UpdateInput struct {
	Title *string
	Src   *string
	File  *upload.File
}

type Service struct {
	log        *slog.Logger
	store      Store
	normalizer Normalizer
	notifier   Notifier
	validate   *validator.Validate
	now        func() time.Time
}

// New builds the service. notifier may be nil when change events are disabled.
func New(log *slog.Logger, store Store, normalizer Normalizer, notifier Notifier) *Service {
	return &Service{
		log:        log,
		store:      store,
		normalizer: normalizer,
		notifier:   notifier,
		validate:   validator.New(),
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context, ownerID string) ([]models.Image, error) {
	const op = "gallery.List"

	if ownerID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoOwner)
	}

	images, err := s.store.ListImages(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

func (s *Service) Get(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error) {
	const op = "gallery.Get"

	if ownerID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoOwner)
	}

	image, err := s.store.GetImage(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

// Create stores the image source and persists the record. The stored file is
// removed again when the record cannot be saved.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Image, error) {
	const op = "gallery.Create"

	if ownerID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoOwner)
	}

	title := strings.TrimSpace(in.Title)

	fields := make(map[string]string)
	if msg := s.checkTitle(title); msg != "" {
		fields["title"] = msg
	}
	switch {
	case in.File == nil && in.Src == "":
		fields["src"] = "an image file or src is required"
	case in.File != nil && in.Src != "":
		fields["src"] = "send either a file or src, not both"
	}
	if len(fields) > 0 {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Fields: fields})
	}

	stored, err := s.normalize(ctx, in.Src, in.File)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	image, err := s.store.SaveImage(ctx, ownerID, title, stored.FileName, stored.FileURL)
	if err != nil {
		s.discard(ctx, stored)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notify(ctx, models.ImageCreated, image)

	return image, nil
}

// Update applies the supplied fields. A replaced stored file is removed once
// the record points at the new one.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, in UpdateInput) (*models.Image, error) {
	const op = "gallery.Update"

	if ownerID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoOwner)
	}

	existing, err := s.store.GetImage(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Sending the current location back is not a replacement.
	if in.Src != nil && *in.Src == existing.FileURL {
		in.Src = nil
	}

	var patch models.ImagePatch

	fields := make(map[string]string)
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if msg := s.checkTitle(title); msg != "" {
			fields["title"] = msg
		}
		patch.Title = &title
	}
	switch {
	case in.File != nil && in.Src != nil:
		fields["src"] = "send either a file or src, not both"
	case in.Src != nil && *in.Src == "":
		fields["src"] = "src must not be empty"
	}
	if len(fields) > 0 {
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Fields: fields})
	}

	var stored *upload.Stored
	if in.File != nil || in.Src != nil {
		var src string
		if in.Src != nil {
			src = *in.Src
		}

		stored, err = s.normalize(ctx, src, in.File)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		patch.FileName = &stored.FileName
		patch.FileURL = &stored.FileURL
	}

	if patch.Empty() {
		return existing, nil
	}

	image, err := s.store.UpdateImage(ctx, ownerID, id, patch)
	if err != nil {
		if stored != nil {
			s.discard(ctx, stored)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if stored != nil && existing.FileURL != image.FileURL {
		s.removeFile(ctx, existing.FileURL)
	}

	s.notify(ctx, models.ImageUpdated, image)

	return image, nil
}

// Delete removes the record and then, best effort, its stored file.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	const op = "gallery.Delete"

	if ownerID == "" {
		return fmt.Errorf("%s: %w", op, ErrNoOwner)
	}

	image, err := s.store.DeleteImage(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.removeFile(ctx, image.FileURL)
	s.notify(ctx, models.ImageDeleted, image)

	return nil
}

func (s *Service) checkTitle(title string) string {
	err := s.validate.Var(title, fmt.Sprintf("required,max=%d", MaxTitleLength))
	if err == nil {
		return ""
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 && errs[0].Tag() == "max" {
		return fmt.Sprintf("the title must not be longer than %d characters", MaxTitleLength)
	}

	return "the title is required"
}

func (s *Service) normalize(ctx context.Context, src string, file *upload.File) (*upload.Stored, error) {
	if file != nil {
		stored, err := s.normalizer.StoreFile(ctx, *file)
		if err != nil {
			return nil, uploadError("file", err)
		}
		return stored, nil
	}

	stored, err := s.normalizer.StoreSource(ctx, src)
	if err != nil {
		return nil, uploadError("src", err)
	}
	return stored, nil
}

// discard rolls back a file written for a record that was never persisted.
func (s *Service) discard(ctx context.Context, stored *upload.Stored) {
	if stored.Key == "" {
		return
	}

	if err := s.normalizer.Remove(ctx, stored.FileURL); err != nil {
		s.log.Error("failed to remove orphaned file",
			slog.String("file_url", stored.FileURL),
			sl.Err(err),
		)
		return
	}

	s.log.Info("orphaned file removed", slog.String("file_url", stored.FileURL))
}

func (s *Service) removeFile(ctx context.Context, fileURL string) {
	if err := s.normalizer.Remove(ctx, fileURL); err != nil {
		s.log.Warn("failed to remove stored file",
			slog.String("file_url", fileURL),
			sl.Err(err),
		)
	}
}

func (s *Service) notify(ctx context.Context, eventType models.EventType, image *models.Image) {
	if s.notifier == nil {
		return
	}

	event := models.ImageEvent{
		Type:       eventType,
		ImageID:    image.ID,
		OwnerID:    image.OwnerID,
		Title:      image.Title,
		FileURL:    image.FileURL,
		OccurredAt: s.now().UTC(),
	}

	if err := s.notifier.Notify(ctx, event); err != nil {
		s.log.Warn("failed to publish image event",
			slog.String("type", string(eventType)),
			slog.String("image_id", image.ID.String()),
			sl.Err(err),
		)
	}
}
