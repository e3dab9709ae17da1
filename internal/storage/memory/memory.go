// Package memory keeps images in process memory. It backs tests and the
// "memory" database driver for local runs without PostgreSQL.
package memory

import (
	"context"
	"fmt"
	"gallery/internal/models"
	"gallery/internal/storage"
	"github.com/google/uuid"
	"sync"
	"time"
)

type Storage struct {
	mu     sync.RWMutex
	images map[uuid.UUID]*models.Image
	order  []uuid.UUID
	now    func() time.Time
}

func New() *Storage {
	return &Storage{
		images: make(map[uuid.UUID]*models.Image),
		now:    time.Now,
	}
}

func (s *Storage) ListImages(_ context.Context, ownerID string) ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	images := make([]models.Image, 0)
	for _, id := range s.order {
		image := s.images[id]
		if image.OwnerID == ownerID {
			images = append(images, *image)
		}
	}

	return images, nil
}

func (s *Storage) SaveImage(_ context.Context, ownerID, title, fileName, fileURL string) (*models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	image := &models.Image{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		FileName:  fileName,
		FileURL:   fileURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.images[image.ID] = image
	s.order = append(s.order, image.ID)

	out := *image
	return &out, nil
}

func (s *Storage) GetImage(_ context.Context, ownerID string, id uuid.UUID) (*models.Image, error) {
	const op = "storage.memory.GetImage"

	s.mu.RLock()
	defer s.mu.RUnlock()

	image, ok := s.lookup(ownerID, id)
	if !ok {
		return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
	}

	out := *image
	return &out, nil
}

func (s *Storage) UpdateImage(_ context.Context, ownerID string, id uuid.UUID, patch models.ImagePatch) (*models.Image, error) {
	const op = "storage.memory.UpdateImage"

	s.mu.Lock()
	defer s.mu.Unlock()

	image, ok := s.lookup(ownerID, id)
	if !ok {
		return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
	}

	if patch.Title != nil {
		image.Title = *patch.Title
	}
	if patch.FileName != nil {
		image.FileName = *patch.FileName
	}
	if patch.FileURL != nil {
		image.FileURL = *patch.FileURL
	}
	image.UpdatedAt = s.now().UTC()

	out := *image
	return &out, nil
}

func (s *Storage) DeleteImage(_ context.Context, ownerID string, id uuid.UUID) (*models.Image, error) {
	const op = "storage.memory.DeleteImage"

	s.mu.Lock()
	defer s.mu.Unlock()

	image, ok := s.lookup(ownerID, id)
	if !ok {
		return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
	}

	delete(s.images, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return image, nil
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) lookup(ownerID string, id uuid.UUID) (*models.Image, bool) {
	image, ok := s.images[id]
	if !ok || image.OwnerID != ownerID {
		return nil, false
	}
	return image, true
}
