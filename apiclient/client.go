// Package apiclient is a typed HTTP client for the dessert shop API.
package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/meethahouse/dessert-api/models"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithHTTPClient swaps the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = resty.NewWithClient(hc).
			SetBaseURL(c.http.BaseURL).
			SetHeader("Accept", "application/json")
	}
}

// New returns a client rooted at baseURL, e.g. "http://localhost:3000/api".
// Requests are never retried.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// do sends req and decodes a 2xx body into result. notFound, when set, turns
// a 404 into that error.
func (c *Client) do(req *resty.Request, method, path, op string, result any, notFound *NotFoundError) error {
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound && notFound != nil {
		return notFound
	}
	return &ServerError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
}

func errorMessage(body []byte) string {
	var payload models.ErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil || strings.TrimSpace(payload.Error) == "" {
		return defaultErrorMessage
	}
	return payload.Error
}

func (c *Client) ListDesserts(ctx context.Context) ([]models.Dessert, error) {
	var desserts []models.Dessert
	if err := c.do(c.request(ctx), http.MethodGet, "/desserts", "list desserts", &desserts, nil); err != nil {
		return nil, err
	}
	return desserts, nil
}

func (c *Client) GetDessert(ctx context.Context, id string) (*models.Dessert, error) {
	var dessert models.Dessert
	req := c.request(ctx).SetPathParam("id", id)
	if err := c.do(req, http.MethodGet, "/desserts/{id}", "get dessert", &dessert, &NotFoundError{Resource: "dessert", ID: id}); err != nil {
		return nil, err
	}
	return &dessert, nil
}

func (c *Client) CreateOrder(ctx context.Context, order models.CreateOrderRequest) (*models.Order, error) {
	var created models.Order
	req := c.request(ctx).SetBody(order)
	if err := c.do(req, http.MethodPost, "/orders", "create order", &created, nil); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(c.request(ctx), http.MethodGet, "/orders", "list orders", &orders, nil); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	req := c.request(ctx).SetPathParam("id", id)
	if err := c.do(req, http.MethodGet, "/orders/{id}", "get order", &order, &NotFoundError{Resource: "order", ID: id}); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, update models.UpdateOrderRequest) (*models.Order, error) {
	var order models.Order
	req := c.request(ctx).SetPathParam("id", id).SetBody(update)
	if err := c.do(req, http.MethodPatch, "/orders/{id}", "update order", &order, &NotFoundError{Resource: "order", ID: id}); err != nil {
		return nil, err
	}
	return &order, nil
}

// Login exchanges the admin credential for a token and keeps it for later
// requests.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := c.request(ctx).SetBody(models.LoginData{Email: email, Password: password})
	if err := c.do(req, http.MethodPost, "/login", "login", &resp, nil); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}
