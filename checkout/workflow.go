// Package checkout turns the cart, or a single buy-now item, into orders once
// the buyer has entered their details and UPI transaction id.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/meethahouse/dessert-api/cart"
	"github.com/meethahouse/dessert-api/logger"
	"github.com/meethahouse/dessert-api/models"
	"github.com/meethahouse/dessert-api/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type State int

const (
	Editing State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Details are the buyer fields shared by every order of one checkout.
type Details struct {
	Name          string `json:"name" validate:"required,nonblank,max=100"`
	Phone         string `json:"phone" validate:"required,phone10"`
	TransactionID string `json:"transaction_id" validate:"required,nonblank,max=50"`
}

func (d Details) trimmed() Details {
	return Details{
		Name:          strings.TrimSpace(d.Name),
		Phone:         strings.TrimSpace(d.Phone),
		TransactionID: strings.TrimSpace(d.TransactionID),
	}
}

var fieldMessages = map[string]string{
	"name":           "Please enter your name",
	"phone":          "Please enter a valid 10-digit phone number",
	"transaction_id": "Please enter the UPI transaction ID",
}

// OrderCreator places a single order line. *apiclient.Client satisfies it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order models.CreateOrderRequest) (*models.Order, error)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	validateErr  error
)

func detailsValidator() (*validator.Validate, error) {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		})
		validateErr = utils.RegisterValidations(v)
		validate = v
	})
	return validate, validateErr
}

// Workflow is a single checkout attempt. It is safe for concurrent use; the
// state machine rejects a second Submit while one is in flight.
type Workflow struct {
	mu      sync.Mutex
	api     OrderCreator
	cart    *cart.Store
	buyNow  *models.CartLine
	details Details
	state   State
	ref     string
	err     error
	created []models.Order
	log     *zap.Logger
	now     func() time.Time
}

// NewCartCheckout checks out every line of store. An empty cart has nothing to
// check out.
func NewCartCheckout(api OrderCreator, store *cart.Store, log *zap.Logger) (*Workflow, error) {
	if store == nil || store.Empty() {
		return nil, ErrEmptyCart
	}
	return newWorkflow(api, log, store, nil), nil
}

// NewBuyNow checks out qty of a single dessert without touching the cart.
// qty below 1 counts as 1.
func NewBuyNow(api OrderCreator, dessert models.Dessert, qty int, log *zap.Logger) *Workflow {
	if qty < 1 {
		qty = 1
	}
	line := models.CartLine{
		ID:       dessert.ID,
		Name:     dessert.Name,
		Price:    dessert.Price,
		ImageURL: dessert.ImageURL,
		Quantity: qty,
	}
	return newWorkflow(api, log, nil, &line)
}

func newWorkflow(api OrderCreator, log *zap.Logger, store *cart.Store, line *models.CartLine) *Workflow {
	return &Workflow{api: api, cart: store, buyNow: line, log: logger.OrNop(log), now: time.Now}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// OrderRef is set once the workflow has Succeeded.
func (w *Workflow) OrderRef() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ref
}

// Err is the error that moved the workflow to Failed.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Created lists every order placed so far, across retries.
func (w *Workflow) Created() []models.Order {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Order(nil), w.created...)
}

func (w *Workflow) Details() Details {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.details
}

// Lines are what a Submit would order right now.
func (w *Workflow) Lines() []models.CartLine {
	if w.buyNow != nil {
		return []models.CartLine{*w.buyNow}
	}
	return w.cart.Lines()
}

func (w *Workflow) Total() int {
	total := 0
	for _, l := range w.Lines() {
		total += l.Subtotal()
	}
	return total
}

// Edit replaces the buyer details. Editing a Failed workflow returns it to
// Editing.
func (w *Workflow) Edit(details Details) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case Submitting:
		return ErrSubmitInProgress
	case Succeeded:
		return ErrAlreadySubmitted
	}
	w.details = details
	w.state = Editing
	w.err = nil
	return nil
}

func (w *Workflow) validateDetails(d Details) error {
	v, err := detailsValidator()
	if err != nil {
		return fmt.Errorf("checkout validator: %w", err)
	}
	err = v.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		msg, ok := fieldMessages[field]
		if !ok {
			msg = field + " is invalid"
		}
		return &ValidationError{Field: field, Message: msg}
	}
	return err
}

type lineResult struct {
	order *models.Order
	err   error
}

// Submit validates the details and creates one order per line, concurrently.
// It returns the order reference on success. Nothing is retried.
func (w *Workflow) Submit(ctx context.Context) (string, error) {
	w.mu.Lock()
	switch w.state {
	case Submitting:
		w.mu.Unlock()
		return "", ErrSubmitInProgress
	case Succeeded:
		ref := w.ref
		w.mu.Unlock()
		return ref, ErrAlreadySubmitted
	}

	details := w.details.trimmed()
	if err := w.validateDetails(details); err != nil {
		w.state = Editing
		w.err = nil
		w.mu.Unlock()
		return "", err
	}

	lines := w.Lines()
	if len(lines) == 0 {
		w.state = Editing
		w.mu.Unlock()
		return "", ErrEmptyCart
	}
	w.details = details
	w.state = Submitting
	w.err = nil
	w.mu.Unlock()

	results := w.createOrders(ctx, details, lines)

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finish(lines, results)
}

func (w *Workflow) createOrders(ctx context.Context, details Details, lines []models.CartLine) []lineResult {
	results := make([]lineResult, len(lines))
	// Plain group: a failed line must not cancel lines already on the wire.
	var g errgroup.Group
	for i, line := range lines {
		g.Go(func() error {
			order, err := w.api.CreateOrder(ctx, models.CreateOrderRequest{
				Name:          details.Name,
				Phone:         details.Phone,
				DessertID:     line.ID,
				DessertName:   line.Name,
				Quantity:      line.Quantity,
				TotalAmount:   intPtr(line.Subtotal()),
				TransactionID: details.TransactionID,
			})
			results[i] = lineResult{order: order, err: err}
			return err
		})
	}
	_ = g.Wait()
	return results
}

// finish must be called with mu held.
func (w *Workflow) finish(lines []models.CartLine, results []lineResult) (string, error) {
	var (
		created []models.Order
		failed  []LineError
	)
	for i, r := range results {
		if r.err != nil {
			failed = append(failed, LineError{Line: lines[i], Err: r.err})
			continue
		}
		if r.order != nil {
			created = append(created, *r.order)
		}
	}
	w.created = append(w.created, created...)

	if len(failed) == 0 {
		ref := ""
		if results[0].order != nil {
			ref = results[0].order.OrderID
		}
		if ref == "" {
			ref = fmt.Sprintf("BATCH-%d", w.now().UnixMilli())
		}
		if w.cart != nil {
			w.cart.Clear()
		}
		w.state = Succeeded
		w.ref = ref
		w.log.Info("Checkout succeeded", zap.String("order_ref", ref), zap.Int("lines", len(lines)))
		return ref, nil
	}

	w.state = Failed
	if len(created) == 0 {
		w.err = failed[0].Err
		w.log.Warn("Checkout failed", zap.Error(w.err))
		return "", w.err
	}

	for i, r := range results {
		if r.err == nil && w.cart != nil {
			w.cart.Remove(lines[i].ID)
		}
	}
	w.err = &PartialFailureError{Created: created, Failed: failed}
	w.log.Warn("Checkout partially failed", zap.Int("created", len(created)), zap.Int("failed", len(failed)))
	return "", w.err
}

func intPtr(v int) *int { return &v }
