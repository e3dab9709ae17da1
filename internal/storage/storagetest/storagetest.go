// Package storagetest holds the behaviour every image store must satisfy.
package storagetest

import (
	"context"
	"gallery/internal/models"
	"gallery/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"testing"
)

type Store interface {
	ListImages(ctx context.Context, ownerID string) ([]models.Image, error)
	SaveImage(ctx context.Context, ownerID, title, fileName, fileURL string) (*models.Image, error)
	GetImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error)
	UpdateImage(ctx context.Context, ownerID string, id uuid.UUID, patch models.ImagePatch) (*models.Image, error)
	DeleteImage(ctx context.Context, ownerID string, id uuid.UUID) (*models.Image, error)
}

// Run exercises store against the image store contract. Owner ids are
// randomised so the suite can run against a shared database.
func Run(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		owner := uuid.NewString()

		saved, err := store.SaveImage(ctx, owner, "Sunset", "sunset.jpg", "/storage/images/abc.jpg")
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, saved.ID)

		got, err := store.GetImage(ctx, owner, saved.ID)
		require.NoError(t, err)
		require.Equal(t, saved.ID, got.ID)
		require.Equal(t, owner, got.OwnerID)
		require.Equal(t, "Sunset", got.Title)
		require.Equal(t, "sunset.jpg", got.FileName)
		require.Equal(t, "/storage/images/abc.jpg", got.FileURL)
	})

	t.Run("get unknown id", func(t *testing.T) {
		_, err := store.GetImage(ctx, uuid.NewString(), uuid.New())
		require.ErrorIs(t, err, storage.ErrImageNotFound)
	})

	t.Run("list is scoped to owner in insertion order", func(t *testing.T) {
		ownerA, ownerB := uuid.NewString(), uuid.NewString()

		first, err := store.SaveImage(ctx, ownerA, "first", "a.png", "/a.png")
		require.NoError(t, err)
		_, err = store.SaveImage(ctx, ownerB, "other", "b.png", "/b.png")
		require.NoError(t, err)
		second, err := store.SaveImage(ctx, ownerA, "second", "c.png", "/c.png")
		require.NoError(t, err)

		images, err := store.ListImages(ctx, ownerA)
		require.NoError(t, err)
		require.Len(t, images, 2)
		require.Equal(t, first.ID, images[0].ID)
		require.Equal(t, second.ID, images[1].ID)
		for _, image := range images {
			require.Equal(t, ownerA, image.OwnerID)
		}

		empty, err := store.ListImages(ctx, uuid.NewString())
		require.NoError(t, err)
		require.NotNil(t, empty)
		require.Empty(t, empty)
	})

	t.Run("foreign owner cannot see or mutate", func(t *testing.T) {
		owner := uuid.NewString()
		saved, err := store.SaveImage(ctx, owner, "mine", "m.gif", "/m.gif")
		require.NoError(t, err)

		intruder := uuid.NewString()
		title := "stolen"

		_, err = store.GetImage(ctx, intruder, saved.ID)
		require.ErrorIs(t, err, storage.ErrImageNotFound)
		_, err = store.UpdateImage(ctx, intruder, saved.ID, models.ImagePatch{Title: &title})
		require.ErrorIs(t, err, storage.ErrImageNotFound)
		_, err = store.DeleteImage(ctx, intruder, saved.ID)
		require.ErrorIs(t, err, storage.ErrImageNotFound)

		got, err := store.GetImage(ctx, owner, saved.ID)
		require.NoError(t, err)
		require.Equal(t, "mine", got.Title)
	})

	t.Run("update title keeps location", func(t *testing.T) {
		owner := uuid.NewString()
		saved, err := store.SaveImage(ctx, owner, "old", "x.jpg", "/x.jpg")
		require.NoError(t, err)

		title := "new"
		updated, err := store.UpdateImage(ctx, owner, saved.ID, models.ImagePatch{Title: &title})
		require.NoError(t, err)
		require.Equal(t, "new", updated.Title)
		require.Equal(t, "x.jpg", updated.FileName)
		require.Equal(t, "/x.jpg", updated.FileURL)
	})

	t.Run("update location keeps title", func(t *testing.T) {
		owner := uuid.NewString()
		saved, err := store.SaveImage(ctx, owner, "kept", "x.jpg", "/x.jpg")
		require.NoError(t, err)

		name, url := "y.png", "/y.png"
		updated, err := store.UpdateImage(ctx, owner, saved.ID, models.ImagePatch{FileName: &name, FileURL: &url})
		require.NoError(t, err)
		require.Equal(t, "kept", updated.Title)
		require.Equal(t, "y.png", updated.FileName)
		require.Equal(t, "/y.png", updated.FileURL)
	})

	t.Run("update unknown id", func(t *testing.T) {
		title := "t"
		_, err := store.UpdateImage(ctx, uuid.NewString(), uuid.New(), models.ImagePatch{Title: &title})
		require.ErrorIs(t, err, storage.ErrImageNotFound)
	})

	t.Run("delete then get fails and second delete fails", func(t *testing.T) {
		owner := uuid.NewString()
		saved, err := store.SaveImage(ctx, owner, "gone", "g.jpg", "/g.jpg")
		require.NoError(t, err)

		deleted, err := store.DeleteImage(ctx, owner, saved.ID)
		require.NoError(t, err)
		require.Equal(t, "/g.jpg", deleted.FileURL)

		_, err = store.GetImage(ctx, owner, saved.ID)
		require.ErrorIs(t, err, storage.ErrImageNotFound)

		_, err = store.DeleteImage(ctx, owner, saved.ID)
		require.ErrorIs(t, err, storage.ErrImageNotFound)
	})
}
