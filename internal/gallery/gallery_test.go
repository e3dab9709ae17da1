package gallery_test

import (
	"bytes"
	"context"
	"errors"
	"gallery/internal/disk/local"
	"gallery/internal/gallery"
	"gallery/internal/models"
	"gallery/internal/storage"
	"gallery/internal/storage/memory"
	"gallery/internal/upload"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	ownerA = "owner-a"
	ownerB = "owner-b"
)

type recordingNotifier struct {
	events []models.ImageEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event models.ImageEvent) error {
	n.events = append(n.events, event)
	return n.err
}

// failingStore fails writes while delegating reads to the embedded store.
type failingStore struct {
	*memory.Storage
	err error
}

func (s *failingStore) SaveImage(context.Context, string, string, string, string) (*models.Image, error) {
	return nil, s.err
}

func (s *failingStore) UpdateImage(context.Context, string, uuid.UUID, models.ImagePatch) (*models.Image, error) {
	return nil, s.err
}

type fixture struct {
	svc      *gallery.Service
	store    *memory.Storage
	root     string
	notifier *recordingNotifier
}

func newFixture(t *testing.T, wrap func(*memory.Storage) gallery.Store) *fixture {
	t.Helper()

	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	root := t.TempDir()
	d, err := local.New(root, "/storage")
	require.NoError(t, err)

	store := memory.New()
	var s gallery.Store = store
	if wrap != nil {
		s = wrap(store)
	}

	notifier := &recordingNotifier{}
	normalizer := upload.New(log, d, 2048*1024, []string{"jpeg", "png", "jpg", "gif"})

	return &fixture{
		svc:      gallery.New(log, s, normalizer, notifier),
		store:    store,
		root:     root,
		notifier: notifier,
	}
}

func (f *fixture) storedFiles(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(f.root, "images"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *fixture) read(t *testing.T, fileURL string) []byte {
	t.Helper()

	key := strings.TrimPrefix(fileURL, "/storage/")
	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(key)))
	require.NoError(t, err)
	return data
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()

	var verr *gallery.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func ptr(s string) *string { return &s }

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.Create(ctx, ownerA, gallery.CreateInput{Title: "Sunset", Src: "data:image/jpeg;base64,QUJD"})
	require.NoError(t, err)
	require.Equal(t, "Sunset", created.Title)
	require.True(t, strings.HasPrefix(created.FileURL, "/storage/"))
	require.True(t, strings.HasSuffix(created.FileURL, ".jpg"))
	require.Equal(t, "ABC", string(f.read(t, created.FileURL)))

	got, err := f.svc.Get(ctx, ownerA, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Title, got.Title)
	require.Equal(t, created.FileName, got.FileName)
	require.Equal(t, created.FileURL, got.FileURL)
	require.NotEmpty(t, got.OwnerID)

	require.Len(t, f.notifier.events, 1)
	require.Equal(t, models.ImageCreated, f.notifier.events[0].Type)
	require.Equal(t, created.ID, f.notifier.events[0].ImageID)
}

func TestCreatePassesURLThrough(t *testing.T) {
	f := newFixture(t, nil)

	created, err := f.svc.Create(context.Background(), ownerA, gallery.CreateInput{
		Title: "  Remote  ",
		Src:   "https://example.com/cat.png",
	})
	require.NoError(t, err)
	require.Equal(t, "Remote", created.Title)
	require.Equal(t, "https://example.com/cat.png", created.FileURL)
	require.Equal(t, "cat.png", created.FileName)
	require.Empty(t, f.storedFiles(t))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		in     gallery.CreateInput
		fields []string
	}{
		{
			name:   "missing title and source",
			in:     gallery.CreateInput{},
			fields: []string{"title", "src"},
		},
		{
			name:   "blank title",
			in:     gallery.CreateInput{Title: "   ", Src: "/a.png"},
			fields: []string{"title"},
		},
		{
			name:   "title too long",
			in:     gallery.CreateInput{Title: strings.Repeat("x", 256), Src: "/a.png"},
			fields: []string{"title"},
		},
		{
			name:   "both file and src",
			in:     gallery.CreateInput{Title: "t", Src: "/a.png", File: &upload.File{Name: "a.png", Reader: strings.NewReader("x")}},
			fields: []string{"src"},
		},
		{
			name:   "malformed base64",
			in:     gallery.CreateInput{Title: "t", Src: "data:image/png;base64,!!!"},
			fields: []string{"src"},
		},
		{
			name:   "not a url",
			in:     gallery.CreateInput{Title: "t", Src: "just words"},
			fields: []string{"src"},
		},
		{
			name:   "file not an image",
			in:     gallery.CreateInput{Title: "t", File: &upload.File{Name: "a.png", Size: 4, Reader: strings.NewReader("text")}},
			fields: []string{"file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			_, err := f.svc.Create(context.Background(), ownerA, tt.in)
			fields := validationFields(t, err)
			require.Len(t, fields, len(tt.fields))
			for _, field := range tt.fields {
				require.Contains(t, fields, field)
			}

			images, err := f.svc.List(context.Background(), ownerA)
			require.NoError(t, err)
			require.Empty(t, images)
			require.Empty(t, f.notifier.events)
		})
	}
}

func TestTitleLengthCountsCharacters(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), ownerA, gallery.CreateInput{Title: strings.Repeat("é", 255), Src: "/a.png"})
	require.NoError(t, err)
}

func TestOversizedFileCreatesNothing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), ownerA, gallery.CreateInput{
		Title: "big",
		File:  &upload.File{Name: "big.png", Size: 2048*1024 + 1, Reader: strings.NewReader("")},
	})
	require.Contains(t, validationFields(t, err), "file")

	images, err := f.svc.List(context.Background(), ownerA)
	require.NoError(t, err)
	require.Empty(t, images)
	require.Empty(t, f.storedFiles(t))
}

func TestCreateRollsBackFileWhenSaveFails(t *testing.T) {
	dbErr := errors.New("db down")
	f := newFixture(t, func(s *memory.Storage) gallery.Store {
		return &failingStore{Storage: s, err: dbErr}
	})

	_, err := f.svc.Create(context.Background(), ownerA, gallery.CreateInput{Title: "t", Src: "data:image/png;base64,QUJD"})
	require.ErrorIs(t, err, dbErr)
	require.Empty(t, f.storedFiles(t))
	require.Empty(t, f.notifier.events)
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.Create(ctx, ownerA, gallery.CreateInput{Title: "old", Src: "data:image/png;base64,QUJD"})
	require.NoError(t, err)

	t.Run("title only keeps location", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, ownerA, created.ID, gallery.UpdateInput{Title: ptr("renamed")})
		require.NoError(t, err)
		require.Equal(t, "renamed", updated.Title)
		require.Equal(t, created.FileURL, updated.FileURL)
		require.Equal(t, created.FileName, updated.FileName)
		require.Len(t, f.storedFiles(t), 1)
	})

	t.Run("location only keeps title and removes replaced file", func(t *testing.T) {
		updated, err := f.svc.Update(ctx, ownerA, created.ID, gallery.UpdateInput{Src: ptr("data:image/gif;base64,REVG")})
		require.NoError(t, err)
		require.Equal(t, "renamed", updated.Title)
		require.NotEqual(t, created.FileURL, updated.FileURL)
		require.True(t, strings.HasSuffix(updated.FileURL, ".gif"))
		require.Equal(t, "DEF", string(f.read(t, updated.FileURL)))

		files := f.storedFiles(t)
		require.Len(t, files, 1)
		require.True(t, strings.HasSuffix(files[0], ".gif"))
	})

	t.Run("empty update returns record unchanged", func(t *testing.T) {
		before, err := f.svc.Get(ctx, ownerA, created.ID)
		require.NoError(t, err)

		events := len(f.notifier.events)
		updated, err := f.svc.Update(ctx, ownerA, created.ID, gallery.UpdateInput{})
		require.NoError(t, err)
		require.Equal(t, before, updated)
		require.Len(t, f.notifier.events, events)
	})

	t.Run("invalid title", func(t *testing.T) {
		_, err := f.svc.Update(ctx, ownerA, created.ID, gallery.UpdateInput{Title: ptr("")})
		require.Contains(t, validationFields(t, err), "title")
	})

	t.Run("empty src", func(t *testing.T) {
		_, err := f.svc.Update(ctx, ownerA, created.ID, gallery.UpdateInput{Src: ptr("")})
		require.Contains(t, validationFields(t, err), "src")
	})
}

func TestUpdateUnknownImageWritesNothing(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Update(context.Background(), ownerA, uuid.New(), gallery.UpdateInput{Src: ptr("data:image/png;base64,QUJD")})
	require.ErrorIs(t, err, storage.ErrImageNotFound)
	require.Empty(t, f.storedFiles(t))
}

func TestUpdateRollsBackNewFileWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("db down")

	f := newFixture(t, func(s *memory.Storage) gallery.Store {
		return &failingStore{Storage: s, err: dbErr}
	})

	existing, err := f.store.SaveImage(ctx, ownerA, "kept", "a.png", "/elsewhere/a.png")
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, ownerA, existing.ID, gallery.UpdateInput{Src: ptr("data:image/png;base64,QUJD")})
	require.ErrorIs(t, err, dbErr)
	require.Empty(t, f.storedFiles(t))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.Create(ctx, ownerA, gallery.CreateInput{Title: "bye", Src: "data:image/png;base64,QUJD"})
	require.NoError(t, err)
	require.Len(t, f.storedFiles(t), 1)

	require.NoError(t, f.svc.Delete(ctx, ownerA, created.ID))
	require.Empty(t, f.storedFiles(t))

	_, err = f.svc.Get(ctx, ownerA, created.ID)
	require.ErrorIs(t, err, storage.ErrImageNotFound)

	err = f.svc.Delete(ctx, ownerA, created.ID)
	require.ErrorIs(t, err, storage.ErrImageNotFound)

	require.Len(t, f.notifier.events, 2)
	require.Equal(t, models.ImageDeleted, f.notifier.events[1].Type)
}

func TestOwnerScoping(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	mine, err := f.svc.Create(ctx, ownerA, gallery.CreateInput{Title: "a", Src: "/a.png"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, ownerB, gallery.CreateInput{Title: "b", Src: "/b.png"})
	require.NoError(t, err)

	images, err := f.svc.List(ctx, ownerA)
	require.NoError(t, err)
	require.Len(t, images, 1)
	require.Equal(t, mine.ID, images[0].ID)

	_, err = f.svc.Get(ctx, ownerB, mine.ID)
	require.ErrorIs(t, err, storage.ErrImageNotFound)
	_, err = f.svc.Update(ctx, ownerB, mine.ID, gallery.UpdateInput{Title: ptr("x")})
	require.ErrorIs(t, err, storage.ErrImageNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, ownerB, mine.ID), storage.ErrImageNotFound)
}

func TestStoredFileCannotBeReferencedByAnotherImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	sunset, err := f.svc.Create(ctx, ownerA, gallery.CreateInput{Title: "Sunset", Src: "data:image/jpeg;base64,QUJD"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, ownerB, gallery.CreateInput{Title: "copy", Src: sunset.FileURL})
	require.Contains(t, validationFields(t, err), "src")

	other, err := f.svc.Create(ctx, ownerB, gallery.CreateInput{Title: "other", Src: "/b.png"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, ownerB, other.ID, gallery.UpdateInput{Src: ptr(sunset.FileURL)})
	require.Contains(t, validationFields(t, err), "src")

	_, err = f.svc.Create(ctx, ownerA, gallery.CreateInput{Title: "twin", Src: sunset.FileURL})
	require.Contains(t, validationFields(t, err), "src")

	require.NoError(t, f.svc.Delete(ctx, ownerB, other.ID))

	got, err := f.svc.Get(ctx, ownerA, sunset.ID)
	require.NoError(t, err)
	require.Equal(t, "ABC", string(f.read(t, got.FileURL)))
}

func TestUpdateWithCurrentLocationKeepsFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.Create(ctx, ownerA, gallery.CreateInput{Title: "Sunset", Src: "data:image/jpeg;base64,QUJD"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, ownerA, created.ID, gallery.UpdateInput{Title: ptr("Dusk"), Src: ptr(created.FileURL)})
	require.NoError(t, err)
	require.Equal(t, "Dusk", updated.Title)
	require.Equal(t, created.FileURL, updated.FileURL)
	require.Equal(t, created.FileName, updated.FileName)
	require.Equal(t, "ABC", string(f.read(t, updated.FileURL)))
}

func TestMissingOwner(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.List(context.Background(), "")
	require.ErrorIs(t, err, gallery.ErrNoOwner)
	_, err = f.svc.Create(context.Background(), "", gallery.CreateInput{Title: "t", Src: "/a.png"})
	require.ErrorIs(t, err, gallery.ErrNoOwner)
}

func TestNotifierFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t, nil)
	f.notifier.err = errors.New("broker unavailable")

	created, err := f.svc.Create(context.Background(), ownerA, gallery.CreateInput{Title: "t", Src: "/a.png"})
	require.NoError(t, err)
	require.NotNil(t, created)
}
