// Package upload turns the image a client sent into a stored file reference.
// It accepts raw multipart files, base64 data URIs and plain URLs.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"gallery/internal/lib/logger/sl"
	"gallery/internal/lib/random"
	"github.com/gabriel-vasile/mimetype"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	nameLength = 16
	keyPrefix  = "images/"
)

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file is too large")
	ErrUnsupportedType  = errors.New("file type is not allowed")
	ErrMalformedDataURI = errors.New("malformed base64 data uri")
	ErrInvalidURL       = errors.New("invalid image url")
	ErrStoredURL        = errors.New("url points at a stored file")
	ErrTypeMismatch     = errors.New("file content does not match its extension")
)

var dataURIPattern = regexp.MustCompile(`^data:image/(\w+);base64,(.*)$`)

// Disk is the storage the normalizer writes files to.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Key(url string) (string, bool)
}

// File is a raw upload as received from a multipart form.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// Stored references a normalized image. Key is empty when the source was
// passed through without writing anything to the disk.
type Stored struct {
	FileName string
	FileURL  string
	Key      string
}

type Normalizer struct {
	log      *slog.Logger
	disk     Disk
	maxBytes int64
	allowed  map[string]struct{}
}

func New(log *slog.Logger, disk Disk, maxBytes int64, allowedExtensions []string) *Normalizer {
	allowed := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[normalizeExt(ext)] = struct{}{}
	}

	return &Normalizer{
		log:      log,
		disk:     disk,
		maxBytes: maxBytes,
		allowed:  allowed,
	}
}

// StoreFile validates a raw upload and writes it under a random name that keeps
// the original extension.
func (n *Normalizer) StoreFile(ctx context.Context, f File) (*Stored, error) {
	const op = "upload.StoreFile"

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	if !n.isAllowed(ext) {
		return nil, fmt.Errorf("%s: extension %q: %w", op, ext, ErrUnsupportedType)
	}

	if f.Size > n.maxBytes {
		return nil, fmt.Errorf("%s: %d bytes: %w", op, f.Size, ErrFileTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(f.Reader, n.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read upload: %w", op, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyFile)
	}

	if int64(len(data)) > n.maxBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrFileTooLarge)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") || !n.isAllowed(strings.TrimPrefix(mtype.Extension(), ".")) {
		return nil, fmt.Errorf("%s: detected %s: %w", op, mtype.String(), ErrUnsupportedType)
	}

	if normalizeExt(mtype.Extension()) != normalizeExt(ext) {
		return nil, fmt.Errorf("%s: %q holds %s: %w", op, f.Name, mtype.String(), ErrTypeMismatch)
	}

	key, err := n.put(ctx, ext, data, mtype.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Stored{
		FileName: filepath.Base(f.Name),
		FileURL:  n.disk.URL(key),
		Key:      key,
	}, nil
}

// StoreSource decodes base64 image data URIs to a stored file. Any other string
// must be a URL and is passed through unchanged.
func (n *Normalizer) StoreSource(ctx context.Context, src string) (*Stored, error) {
	const op = "upload.StoreSource"

	if m := dataURIPattern.FindStringSubmatch(src); m != nil {
		return n.storeDataURI(ctx, m[1], m[2])
	}

	if strings.HasPrefix(strings.ToLower(src), "data:") {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedDataURI)
	}

	name, ok := fileNameFromURL(src)
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, src, ErrInvalidURL)
	}

	// Files on the disk belong to the record that wrote them. Referencing one
	// from another record would let that record delete it.
	if _, onDisk := n.disk.Key(src); onDisk {
		return nil, fmt.Errorf("%s: %q: %w", op, src, ErrStoredURL)
	}

	return &Stored{
		FileName: name,
		FileURL:  src,
	}, nil
}

// Remove deletes the file behind fileURL when it lives on the disk.
// URLs pointing elsewhere are ignored.
func (n *Normalizer) Remove(ctx context.Context, fileURL string) error {
	const op = "upload.Remove"

	key, ok := n.disk.Key(fileURL)
	if !ok {
		return nil
	}

	if err := n.disk.Delete(ctx, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n.log.Debug("stored file removed", slog.String("key", key))

	return nil
}

func (n *Normalizer) storeDataURI(ctx context.Context, subtype, payload string) (*Stored, error) {
	const op = "upload.storeDataURI"

	ext := normalizeExt(subtype)
	if !n.isAllowed(ext) {
		return nil, fmt.Errorf("%s: extension %q: %w", op, ext, ErrUnsupportedType)
	}

	if int64(len(payload)) > int64(base64.StdEncoding.EncodedLen(int(n.maxBytes))) {
		return nil, fmt.Errorf("%s: %w", op, ErrFileTooLarge)
	}

	data, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		n.log.Debug("base64 payload rejected", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrMalformedDataURI)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyFile)
	}

	if int64(len(data)) > n.maxBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrFileTooLarge)
	}

	key, err := n.put(ctx, ext, data, "image/"+strings.ToLower(subtype))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Stored{
		FileName: path.Base(key),
		FileURL:  n.disk.URL(key),
		Key:      key,
	}, nil
}

func (n *Normalizer) put(ctx context.Context, ext string, data []byte, contentType string) (string, error) {
	key := keyPrefix + random.NewRandomString(nameLength) + "." + ext

	if err := n.disk.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", err
	}

	n.log.Debug("file stored", slog.String("key", key), slog.Int("size", len(data)))

	return key, nil
}

func (n *Normalizer) isAllowed(ext string) bool {
	if ext == "" {
		return false
	}
	_, ok := n.allowed[normalizeExt(ext)]
	return ok
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

// fileNameFromURL accepts absolute http(s) URLs and root relative paths.
func fileNameFromURL(raw string) (string, bool) {
	if raw == "" || strings.ContainsAny(raw, " \t\r\n") {
		return "", false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	switch {
	case (u.Scheme == "http" || u.Scheme == "https") && u.Host != "":
	case u.Scheme == "" && u.Host == "" && strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//"):
	default:
		return "", false
	}

	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = u.Host
	}
	if name == "" {
		name = raw
	}

	return name, true
}
