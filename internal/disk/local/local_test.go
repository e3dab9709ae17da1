package local_test

import (
	"context"
	"gallery/internal/disk/local"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisk(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	d, err := local.New(root, "storage/")
	require.NoError(t, err)
	require.Equal(t, "/storage", d.PublicPrefix())

	err = d.Put(ctx, "images/abc.png", strings.NewReader("payload"), 7, "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "images", "abc.png"))
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	url := d.URL("images/abc.png")
	require.Equal(t, "/storage/images/abc.png", url)

	key, ok := d.Key(url)
	require.True(t, ok)
	require.Equal(t, "images/abc.png", key)

	_, ok = d.Key("https://example.com/images/abc.png")
	require.False(t, ok)

	t.Run("served over http", func(t *testing.T) {
		rr := httptest.NewRecorder()
		d.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))

		require.Equal(t, http.StatusOK, rr.Code)
		body, err := io.ReadAll(rr.Body)
		require.NoError(t, err)
		require.Equal(t, "payload", string(body))
	})

	t.Run("existing key is not overwritten", func(t *testing.T) {
		err := d.Put(ctx, "images/abc.png", strings.NewReader("other"), 5, "image/png")
		require.Error(t, err)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		err := d.Put(ctx, "../escape.png", strings.NewReader("x"), 1, "image/png")
		require.Error(t, err)
	})

	require.NoError(t, d.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(root, "images", "abc.png"))
	require.True(t, os.IsNotExist(err))

	require.Error(t, d.Delete(ctx, key))
}

func TestHandlerHidesDirectories(t *testing.T) {
	d, err := local.New(t.TempDir(), "/storage")
	require.NoError(t, err)
	require.NoError(t, d.Put(context.Background(), "images/abc.png", strings.NewReader("payload"), 7, "image/png"))

	for _, target := range []string{"/storage/", "/storage/images/", "/storage/images"} {
		rr := httptest.NewRecorder()
		d.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, http.StatusNotFound, rr.Code, target)
		require.NotContains(t, rr.Body.String(), "abc.png", target)
	}

	rr := httptest.NewRecorder()
	d.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/storage/images/abc.png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "payload", rr.Body.String())
}
