package local

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Disk writes files below Root and exposes them under PublicPrefix.
type Disk struct {
	root   string
	prefix string
}

func New(root, publicPrefix string) (*Disk, error) {
	const op = "disk.local.New"

	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prefix := "/" + strings.Trim(publicPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	return &Disk{
		root:   root,
		prefix: prefix,
	}, nil
}

func (d *Disk) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	const op = "disk.local.Put"

	fullPath, err := d.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(fullPath)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = dst.Close(); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (d *Disk) Delete(_ context.Context, key string) error {
	const op = "disk.local.Delete"

	fullPath, err := d.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = os.Remove(fullPath); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (d *Disk) URL(key string) string {
	return d.prefix + "/" + strings.TrimPrefix(key, "/")
}

// Key reports the storage key behind a public URL produced by URL.
func (d *Disk) Key(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, d.prefix+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// PublicPrefix is the URL path the files are served under.
func (d *Disk) PublicPrefix() string {
	return d.prefix
}

// Handler serves stored files. Mount it under PublicPrefix.
func (d *Disk) Handler() http.Handler {
	return http.StripPrefix(d.prefix+"/", http.FileServer(filesOnly{http.Dir(d.root)}))
}

// filesOnly hides directories so stored names cannot be listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}

	return file, nil
}

func (d *Disk) path(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if cleaned == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.root, filepath.FromSlash(cleaned)), nil
}
