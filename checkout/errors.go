package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meethahouse/dessert-api/models"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrSubmitInProgress = errors.New("order submission already in progress")
	ErrAlreadySubmitted = errors.New("order already placed")
)

// ValidationError names the first buyer field that failed validation. It is
// returned before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// LineError is one cart line the server did not accept.
type LineError struct {
	Line models.CartLine
	Err  error
}

// PartialFailureError reports a cart checkout where some lines became orders
// and others did not. The created lines are already out of the cart, so a
// retry only resubmits Failed.
type PartialFailureError struct {
	Created []models.Order
	Failed  []LineError
}

func (e *PartialFailureError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		names = append(names, f.Line.Name)
	}
	return fmt.Sprintf("%d of %d items ordered; failed: %s",
		len(e.Created), len(e.Created)+len(e.Failed), strings.Join(names, ", "))
}

// Unwrap exposes the per-line causes to errors.Is and errors.As.
func (e *PartialFailureError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}
