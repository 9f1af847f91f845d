package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meethahouse/dessert-api/initializers"
	"github.com/meethahouse/dessert-api/models"
	"github.com/meethahouse/dessert-api/repository"
	"github.com/meethahouse/dessert-api/routes"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@dessertshop.local"
	adminPassword = "sweets123"
)

type recordingPublisher struct {
	mu     sync.Mutex
	orders []models.Order
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, order models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return nil
}

func (p *recordingPublisher) published() []models.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Order(nil), p.orders...)
}

type fakeImageUploader struct {
	url string
	err error
}

func (f *fakeImageUploader) UploadDessertImage(_ context.Context, dessertID, filename, _ string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, body)
	return f.url, nil
}

type testEnv struct {
	server    *gin.Engine
	store     *repository.MemoryStore
	publisher *recordingPublisher
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	publisher := &recordingPublisher{}

	initializers.Cfg = &initializers.Config{
		Env:            "test",
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
		AdminEmail:     adminEmail,
		AdminPassHash:  string(hash),
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	initializers.Store = store
	initializers.Cache = nil
	initializers.Publisher = publisher
	initializers.Uploader = nil

	server, err := routes.NewServer(zap.NewNop())
	require.NoError(t, err)

	return &testEnv{server: server, store: store, publisher: publisher}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/login", models.LoginData{Email: adminEmail, Password: adminPassword}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seedDesserts(t *testing.T, store *repository.MemoryStore) []models.Dessert {
	t.Helper()
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	desserts := []models.Dessert{
		{ID: "d1", Name: "Basundi", Description: "Thickened sweet milk", Price: 39, ImageURL: "basundi", CreatedAt: now},
		{ID: "d2", Name: "Double ka Meetha", Description: "Bread pudding", Price: 59, ImageURL: "double-ka-meetha", CreatedAt: now},
		{ID: "d3", Name: "Kaddu ka Kheer", Description: "Pumpkin kheer", Price: 69, ImageURL: "kaddu-ki-kheer", CreatedAt: now},
	}
	require.NoError(t, store.ReplaceDesserts(context.Background(), desserts))
	return desserts
}
