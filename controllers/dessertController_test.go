package controllers_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meethahouse/dessert-api/initializers"
	"github.com/meethahouse/dessert-api/media"
	"github.com/meethahouse/dessert-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Server is running!", body["message"])
}

func TestGetDessertsEmptyCatalogue(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/desserts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetDesserts(t *testing.T) {
	env := setupTestEnv(t)
	seeded := seedDesserts(t, env.store)

	rec := env.do(t, http.MethodGet, "/api/desserts", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	desserts := decode[[]models.Dessert](t, rec)
	require.Len(t, desserts, 3)
	assert.Equal(t, seeded[0].Name, desserts[0].Name)
	assert.Equal(t, 39, desserts[0].Price)
	assert.Equal(t, "basundi", desserts[0].ImageURL)
}

func TestGetDessert(t *testing.T) {
	env := setupTestEnv(t)
	seedDesserts(t, env.store)

	rec := env.do(t, http.MethodGet, "/api/desserts/d2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Double ka Meetha", decode[models.Dessert](t, rec).Name)

	rec = env.do(t, http.MethodGet, "/api/desserts/missing", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Dessert not found", decode[models.ErrorResponse](t, rec).Error)
}

func TestCreateDessert(t *testing.T) {
	env := setupTestEnv(t)
	body := map[string]any{
		"name":        "Gajar Halwa",
		"description": "Carrot pudding",
		"price":       49,
		"image_url":   "gajar-halwa",
	}

	rec := env.do(t, http.MethodPost, "/api/desserts", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := env.login(t)
	rec = env.do(t, http.MethodPost, "/api/desserts", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Dessert](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 49, created.Price)
	assert.False(t, created.CreatedAt.IsZero())

	rec = env.do(t, http.MethodGet, "/api/desserts/"+created.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateDessertValidation(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t)

	tests := []struct {
		name string
		body string
	}{
		{"blank name", `{"name":"   ","description":"x","price":10,"image_url":"x"}`},
		{"missing price", `{"name":"Kheer","description":"x","image_url":"x"}`},
		{"negative price", `{"name":"Kheer","description":"x","price":-1,"image_url":"x"}`},
		{"unknown field", `{"name":"Kheer","description":"x","price":10,"image_url":"x","stock":3}`},
		{"malformed", `{"name":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/desserts", tc.body, token)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode[models.ErrorResponse](t, rec)
			assert.Equal(t, "Invalid request body", resp.Error)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func uploadRequest(t *testing.T, path, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "basundi.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadDessertImage(t *testing.T) {
	env := setupTestEnv(t)
	seedDesserts(t, env.store)
	token := env.login(t)

	t.Run("not configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, uploadRequest(t, "/api/desserts/d1/image", token))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("uploaded", func(t *testing.T) {
		initializers.Uploader = &fakeImageUploader{url: "https://cdn.example.com/desserts/d1/basundi.png"}
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, uploadRequest(t, "/api/desserts/d1/image", token))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "https://cdn.example.com/desserts/d1/basundi.png", decode[models.Dessert](t, rec).ImageURL)
	})

	t.Run("unknown dessert", func(t *testing.T) {
		initializers.Uploader = &fakeImageUploader{url: "unused"}
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, uploadRequest(t, "/api/desserts/missing/image", token))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		initializers.Uploader = &fakeImageUploader{err: media.ErrUnsupportedImageType}
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, uploadRequest(t, "/api/desserts/d1/image", token))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		initializers.Uploader = &fakeImageUploader{err: errors.New("bucket gone")}
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, uploadRequest(t, "/api/desserts/d1/image", token))
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Empty(t, decode[models.ErrorResponse](t, rec).Details)
	})
}
