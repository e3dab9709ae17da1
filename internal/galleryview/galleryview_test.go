package galleryview_test

import (
	"bytes"
	"context"
	"errors"
	"gallery/internal/galleryview"
	"gallery/internal/galleryview/mocks"
	"gallery/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func newView(t *testing.T, confirm galleryview.ConfirmFunc) (*galleryview.View, *mocks.API) {
	t.Helper()

	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))
	api := mocks.NewAPI(t)

	return galleryview.New(log, api, confirm), api
}

func ptr(s string) *string { return &s }

func sample(title string) models.Image {
	return models.Image{
		ID:       uuid.New(),
		OwnerID:  "user-1",
		Title:    title,
		FileName: title + ".jpg",
		FileURL:  "/storage/images/" + title + ".jpg",
	}
}

func TestMount(t *testing.T) {
	view, api := newView(t, nil)
	images := []models.Image{sample("a"), sample("b")}

	api.On("ListImages", mock.Anything).Return(images, nil).Once()

	require.NoError(t, view.Mount(context.Background()))
	require.Equal(t, images, view.Images)
}

func TestMountFailureKeepsState(t *testing.T) {
	view, api := newView(t, nil)
	images := []models.Image{sample("a")}

	api.On("ListImages", mock.Anything).Return(images, nil).Once()
	require.NoError(t, view.Mount(context.Background()))

	api.On("ListImages", mock.Anything).Return(nil, errors.New("network down")).Once()
	require.Error(t, view.Mount(context.Background()))
	require.Equal(t, images, view.Images)
}

func TestAddRefetchesAndResetsForm(t *testing.T) {
	view, api := newView(t, nil)
	created := sample("Sunset")

	view.Form = galleryview.Form{Title: "Sunset", Src: "data:image/jpeg;base64,QUJD"}

	api.On("CreateImage", mock.Anything, "Sunset", "data:image/jpeg;base64,QUJD").Return(&created, nil).Once()
	api.On("ListImages", mock.Anything).Return([]models.Image{created}, nil).Once()

	require.NoError(t, view.Add(context.Background()))
	require.Equal(t, []models.Image{created}, view.Images)
	require.Equal(t, galleryview.Form{}, view.Form)
	require.Nil(t, view.EditingID)
}

func TestAddUploadsFile(t *testing.T) {
	view, api := newView(t, nil)
	created := sample("Holiday")

	path := filepath.Join(t.TempDir(), "holiday.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))

	view.Form = galleryview.Form{Title: "Holiday", Src: "ignored", FilePath: path}

	api.On("UploadImage", mock.Anything, "Holiday", "holiday.png", mock.MatchedBy(func(r io.Reader) bool {
		data, err := io.ReadAll(r)
		return err == nil && string(data) == "png-bytes"
	})).Return(&created, nil).Once()
	api.On("ListImages", mock.Anything).Return([]models.Image{created}, nil).Once()

	require.NoError(t, view.Add(context.Background()))
	require.Len(t, view.Images, 1)
	require.Equal(t, galleryview.Form{}, view.Form)
}

func TestAddFailureKeepsForm(t *testing.T) {
	view, api := newView(t, nil)

	form := galleryview.Form{Title: "", Src: "https://example.com/a.png"}
	view.Form = form

	api.On("CreateImage", mock.Anything, "", "https://example.com/a.png").Return(nil, errors.New("validation failed")).Once()

	require.Error(t, view.Add(context.Background()))
	require.Equal(t, form, view.Form)
	require.Empty(t, view.Images)
}

func TestAddMissingFile(t *testing.T) {
	view, _ := newView(t, nil)

	view.Form = galleryview.Form{Title: "Ghost", FilePath: filepath.Join(t.TempDir(), "missing.png")}

	require.Error(t, view.Add(context.Background()))
	require.Equal(t, "Ghost", view.Form.Title)
}

func TestEditAndCancel(t *testing.T) {
	view, api := newView(t, nil)
	img := sample("a")

	api.On("ListImages", mock.Anything).Return([]models.Image{img}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))

	require.NoError(t, view.Edit(img.ID))
	require.NotNil(t, view.EditingID)
	require.Equal(t, img.ID, *view.EditingID)
	require.Equal(t, galleryview.Form{Title: img.Title, Src: img.FileURL}, view.Form)

	view.Cancel()
	require.Nil(t, view.EditingID)
	require.Equal(t, galleryview.Form{}, view.Form)

	require.ErrorIs(t, view.Edit(uuid.New()), galleryview.ErrUnknownImage)
}

func TestUpdateTitleOnly(t *testing.T) {
	view, api := newView(t, nil)
	first, second := sample("a"), sample("b")

	api.On("ListImages", mock.Anything).Return([]models.Image{first, second}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))
	require.NoError(t, view.Edit(second.ID))

	view.Form.Title = "renamed"

	renamed := second
	renamed.Title = "renamed"
	api.On("UpdateImage", mock.Anything, second.ID, ptr("renamed"), (*string)(nil)).Return(&renamed, nil).Once()

	require.NoError(t, view.Update(context.Background()))
	require.Equal(t, []models.Image{first, renamed}, view.Images)
	require.Nil(t, view.EditingID)
	require.Equal(t, galleryview.Form{}, view.Form)
}

func TestUpdateSendsChangedSource(t *testing.T) {
	view, api := newView(t, nil)
	img := sample("a")

	api.On("ListImages", mock.Anything).Return([]models.Image{img}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))
	require.NoError(t, view.Edit(img.ID))

	view.Form.Src = "https://example.com/new.png"

	moved := img
	moved.FileURL = "https://example.com/new.png"
	api.On("UpdateImage", mock.Anything, img.ID, ptr(img.Title), ptr("https://example.com/new.png")).Return(&moved, nil).Once()

	require.NoError(t, view.Update(context.Background()))
	require.Equal(t, "https://example.com/new.png", view.Images[0].FileURL)
}

func TestUpdateReplacesFile(t *testing.T) {
	view, api := newView(t, nil)
	img := sample("a")

	api.On("ListImages", mock.Anything).Return([]models.Image{img}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))
	require.NoError(t, view.Edit(img.ID))

	path := filepath.Join(t.TempDir(), "new.gif")
	require.NoError(t, os.WriteFile(path, []byte("gif"), 0o644))
	view.Form.FilePath = path

	replaced := img
	replaced.FileName = "new.gif"
	api.On("ReplaceImageFile", mock.Anything, img.ID, ptr(img.Title), "new.gif", mock.Anything).Return(&replaced, nil).Once()

	require.NoError(t, view.Update(context.Background()))
	require.Equal(t, "new.gif", view.Images[0].FileName)
}

func TestUpdateFailureKeepsState(t *testing.T) {
	view, api := newView(t, nil)
	img := sample("a")

	api.On("ListImages", mock.Anything).Return([]models.Image{img}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))
	require.NoError(t, view.Edit(img.ID))
	view.Form.Title = ""

	api.On("UpdateImage", mock.Anything, img.ID, ptr(""), (*string)(nil)).Return(nil, errors.New("validation failed")).Once()

	require.Error(t, view.Update(context.Background()))
	require.Equal(t, []models.Image{img}, view.Images)
	require.NotNil(t, view.EditingID)
	require.Equal(t, "", view.Form.Title)
}

func TestUpdateWithoutEdit(t *testing.T) {
	view, _ := newView(t, nil)

	require.ErrorIs(t, view.Update(context.Background()), galleryview.ErrNotEditing)
}

func TestDelete(t *testing.T) {
	var asked []string
	view, api := newView(t, func(image models.Image) bool {
		asked = append(asked, image.Title)
		return true
	})
	first, second := sample("a"), sample("b")

	api.On("ListImages", mock.Anything).Return([]models.Image{first, second}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))
	require.NoError(t, view.Edit(first.ID))

	api.On("DeleteImage", mock.Anything, first.ID).Return(nil).Once()

	require.NoError(t, view.Delete(context.Background(), first.ID))
	require.Equal(t, []models.Image{second}, view.Images)
	require.Equal(t, []string{"a"}, asked)
	require.Nil(t, view.EditingID)
}

func TestDeleteDeclined(t *testing.T) {
	view, api := newView(t, func(models.Image) bool { return false })
	img := sample("a")

	api.On("ListImages", mock.Anything).Return([]models.Image{img}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))

	require.NoError(t, view.Delete(context.Background(), img.ID))
	require.Equal(t, []models.Image{img}, view.Images)
}

func TestDeleteFailureKeepsState(t *testing.T) {
	view, api := newView(t, nil)
	img := sample("a")

	api.On("ListImages", mock.Anything).Return([]models.Image{img}, nil).Once()
	require.NoError(t, view.Mount(context.Background()))

	api.On("DeleteImage", mock.Anything, img.ID).Return(errors.New("not found")).Once()

	require.Error(t, view.Delete(context.Background(), img.ID))
	require.Equal(t, []models.Image{img}, view.Images)
}
