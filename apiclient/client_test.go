package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/meethahouse/dessert-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestListDesserts(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/desserts", r.URL.Path)
		writeJSON(w, http.StatusOK, []models.Dessert{{ID: "d1", Name: "Basundi", Price: 39}})
	})

	desserts, err := client.ListDesserts(context.Background())
	require.NoError(t, err)
	require.Len(t, desserts, 1)
	assert.Equal(t, 39, desserts[0].Price)
}

func TestGetDessertNotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/desserts/missing", r.URL.Path)
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Dessert not found"})
	})

	_, err := client.GetDessert(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}

func TestServerErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Invalid request body","details":"phone"}`, "Invalid request body"},
		{"no error field", http.StatusInternalServerError, `{"message":"boom"}`, defaultErrorMessage},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, defaultErrorMessage},
		{"empty body", http.StatusServiceUnavailable, ``, defaultErrorMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := client.CreateOrder(context.Background(), models.CreateOrderRequest{Name: "Asha"})
			var se *ServerError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.status, se.StatusCode)
			assert.Equal(t, tc.message, se.Message)
		})
	}
}

func TestListOrdersNotFoundIsServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "no route"})
	})

	_, err := client.ListOrders(context.Background())
	var se *ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "no route", se.Message)
	assert.False(t, IsNotFound(err))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url+"/api", WithTimeout(time.Second))
	_, err := client.ListDesserts(context.Background())
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "list desserts", ne.Op)
}

func TestNoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "down"})
	})

	_, err := client.ListDesserts(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLoginStoresToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			var body models.LoginData
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin@dessertshop.local", body.Email)
			writeJSON(w, http.StatusOK, models.LoginResponse{User: body.Email, Role: "admin", Token: "tok-1"})
		case "/api/orders/o1":
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			assert.Equal(t, http.MethodPatch, r.Method)
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"serving_status":"served"}`, string(raw))
			writeJSON(w, http.StatusOK, models.Order{ID: "o1", ServingStatus: models.ServingServed})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	resp, err := client.Login(context.Background(), "admin@dessertshop.local", "sweets123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)
	assert.Equal(t, "tok-1", client.Token())

	served := models.ServingServed
	order, err := client.UpdateOrder(context.Background(), "o1", models.UpdateOrderRequest{ServingStatus: &served})
	require.NoError(t, err)
	assert.Equal(t, models.ServingServed, order.ServingStatus)
}
