// Package client talks to the gallery HTTP API on behalf of a single user.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gallery/internal/models"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// APIError is returned for every non 2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	if len(e.Fields) == 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}

	return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, msg, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetries sets how many times idempotent reads are retried after a
// transport error or a 5xx response.
func WithRetries(n uint64) Option {
	return func(c *Client) {
		c.retries = n
	}
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	retries uint64
	backoff time.Duration
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		retries: 2,
		backoff: 100 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type envelope struct {
	Status string            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Image  *models.Image     `json:"image,omitempty"`
	Images []models.Image    `json:"images,omitempty"`
}

func (c *Client) ListImages(ctx context.Context) ([]models.Image, error) {
	const op = "client.ListImages"

	var env envelope
	if err := c.get(ctx, "/images", &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if env.Images == nil {
		return []models.Image{}, nil
	}

	return env.Images, nil
}

func (c *Client) GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	const op = "client.GetImage"

	var env envelope
	if err := c.get(ctx, "/images/"+id.String(), &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return env.Image, nil
}

// CreateImage creates an image from a URL or a base64 data URI.
func (c *Client) CreateImage(ctx context.Context, title, src string) (*models.Image, error) {
	const op = "client.CreateImage"

	body, err := json.Marshal(map[string]string{"title": title, "src": src})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var env envelope
	if err = c.do(ctx, http.MethodPost, "/images", "application/json", bytes.NewReader(body), &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return env.Image, nil
}

// UploadImage creates an image from raw file contents sent as a multipart form.
func (c *Client) UploadImage(ctx context.Context, title, fileName string, r io.Reader) (*models.Image, error) {
	const op = "client.UploadImage"

	body, contentType, err := multipartBody(&title, fileName, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var env envelope
	if err = c.do(ctx, http.MethodPost, "/images", contentType, body, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return env.Image, nil
}

// UpdateImage changes the title and/or the source of an image. Nil arguments
// are not sent.
func (c *Client) UpdateImage(ctx context.Context, id uuid.UUID, title, src *string) (*models.Image, error) {
	const op = "client.UpdateImage"

	req := make(map[string]string, 2)
	if title != nil {
		req["title"] = *title
	}
	if src != nil {
		req["src"] = *src
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var env envelope
	if err = c.do(ctx, http.MethodPut, "/images/"+id.String(), "application/json", bytes.NewReader(body), &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return env.Image, nil
}

// ReplaceImageFile uploads a new file for an image, optionally renaming it.
func (c *Client) ReplaceImageFile(ctx context.Context, id uuid.UUID, title *string, fileName string, r io.Reader) (*models.Image, error) {
	const op = "client.ReplaceImageFile"

	body, contentType, err := multipartBody(title, fileName, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var env envelope
	if err = c.do(ctx, http.MethodPost, "/images/"+id.String(), contentType, body, &env); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return env.Image, nil
}

func (c *Client) DeleteImage(ctx context.Context, id uuid.UUID) error {
	const op = "client.DeleteImage"

	if err := c.do(ctx, http.MethodDelete, "/images/"+id.String(), "", nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, out *envelope) error {
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, "", nil, out)

		var apiErr *APIError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
			return err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			return retry.RetryableError(err)
		}
	})
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out *envelope) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(data) > 0 {
		if err = json.Unmarshal(data, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    env.Error,
			Fields:     env.Fields,
		}
	}

	if out != nil {
		*out = env
	}

	return nil
}

func multipartBody(title *string, fileName string, r io.Reader) (io.Reader, string, error) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	if title != nil {
		if err := writer.WriteField("title", *title); err != nil {
			return nil, "", err
		}
	}

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}

	if _, err = io.Copy(part, r); err != nil {
		return nil, "", err
	}

	if err = writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

// ResolveURL turns a root relative file URL into an absolute one on the API host.
func (c *Client) ResolveURL(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil || u.IsAbs() {
		return fileURL
	}
	return c.baseURL + "/" + strings.TrimLeft(fileURL, "/")
}
