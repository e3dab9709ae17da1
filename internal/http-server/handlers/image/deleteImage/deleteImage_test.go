package deleteImage_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gallery/internal/http-server/handlers/image/deleteImage"
	"gallery/internal/http-server/handlers/image/deleteImage/mocks"
	"gallery/internal/http-server/middleware/auth"
	"gallery/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

const ownerID = "user-1"

func TestDeleteImage(t *testing.T) {
	log := slog.New(slog.NewJSONHandler(bytes.NewBuffer(nil), nil))

	testUUID, _ := uuid.NewRandom()

	tests := []struct {
		name           string
		imageID        string
		mockErr        error
		expectCall     bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			imageID:        testUUID.String(),
			expectCall:     true,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name:           "Invalid UUID",
			imageID:        "invalid-uuid",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid image ID"}`,
		},
		{
			name:           "Not Found",
			imageID:        testUUID.String(),
			mockErr:        fmt.Errorf("gallery.Delete: %w", storage.ErrImageNotFound),
			expectCall:     true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"image not found"}`,
		},
		{
			name:           "Internal Error",
			imageID:        testUUID.String(),
			mockErr:        errors.New("db error"),
			expectCall:     true,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to delete image"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imageDeleterMock := mocks.NewImageDeleter(t)

			if tt.expectCall {
				imageDeleterMock.On("Delete", mock.Anything, ownerID, testUUID).Return(tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/images/%s", tt.imageID), nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.imageID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(auth.WithOwnerID(ctx, ownerID))

			rr := httptest.NewRecorder()

			handler := deleteImage.New(log, imageDeleterMock)
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
