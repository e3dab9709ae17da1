package getImage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gallery/internal/http-server/handlers/image/getImage"
	"gallery/internal/http-server/handlers/image/getImage/mocks"
	"gallery/internal/http-server/middleware/auth"
	"gallery/internal/models"
	"gallery/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const ownerID = "user-1"

func TestGetImage(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	testUUID, _ := uuid.NewRandom()
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	testImage := &models.Image{
		ID:        testUUID,
		OwnerID:   ownerID,
		Title:     "Sunset",
		FileName:  "sunset.jpg",
		FileURL:   "/storage/images/AbCdEfGh12345678.jpg",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	tests := []struct {
		name           string
		imageID        string
		owner          string
		mockImage      *models.Image
		mockErr        error
		expectCall     bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			imageID:        testUUID.String(),
			owner:          ownerID,
			mockImage:      testImage,
			expectCall:     true,
			expectedStatus: http.StatusOK,
			expectedBody:   fmt.Sprintf(`{"status":"OK","image":{"id":"%s","owner_id":"user-1","title":"Sunset","file_name":"sunset.jpg","file_url":"/storage/images/AbCdEfGh12345678.jpg","created_at":"2024-05-01T12:00:00Z","updated_at":"2024-05-01T12:00:00Z"}}`, testUUID),
		},
		{
			name:           "Invalid UUID",
			imageID:        "invalid-uuid",
			owner:          ownerID,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid image ID"}`,
		},
		{
			name:           "Not Found",
			imageID:        testUUID.String(),
			owner:          ownerID,
			mockErr:        fmt.Errorf("gallery.Get: %w", storage.ErrImageNotFound),
			expectCall:     true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"image not found"}`,
		},
		{
			name:           "Internal Error",
			imageID:        testUUID.String(),
			owner:          ownerID,
			mockErr:        errors.New("db error"),
			expectCall:     true,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to get image"}`,
		},
		{
			name:           "No Owner",
			imageID:        testUUID.String(),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imageGetterMock := mocks.NewImageGetter(t)

			if tt.expectCall {
				imageGetterMock.On("Get", mock.Anything, ownerID, testUUID).Return(tt.mockImage, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/images/%s", tt.imageID), nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.imageID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.owner != "" {
				ctx = auth.WithOwnerID(ctx, tt.owner)
			}
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()

			handler := getImage.New(log, imageGetterMock)
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.expectedStatus, rr.Code)

			actualBody := rr.Body.String()
			var actualMap, expectedMap map[string]interface{}
			err := json.Unmarshal([]byte(actualBody), &actualMap)
			require.NoError(t, err)
			err = json.Unmarshal([]byte(tt.expectedBody), &expectedMap)
			require.NoError(t, err)
			require.Equal(t, expectedMap, actualMap)
		})
	}
}
