package models

import "time"

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionVerified TransactionStatus = "verified"
	TransactionFailed   TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPending, TransactionVerified, TransactionFailed:
		return true
	}
	return false
}

type ServingStatus string

const (
	ServingPending   ServingStatus = "pending"
	ServingPreparing ServingStatus = "preparing"
	ServingServed    ServingStatus = "served"
)

func (s ServingStatus) Valid() bool {
	switch s {
	case ServingPending, ServingPreparing, ServingServed:
		return true
	}
	return false
}

// Order is one committed purchase of a single dessert line. A cart checkout
// produces one Order per line, all sharing the buyer details and transaction id.
type Order struct {
	ID                string            `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	OrderID           string            `json:"order_id" bson:"order_id" gorm:"uniqueIndex;size:32;not null"`
	Name              string            `json:"name" bson:"name" gorm:"size:100;not null"`
	Phone             string            `json:"phone" bson:"phone" gorm:"size:10;not null"`
	DessertID         string            `json:"dessert_id" bson:"dessert_id" gorm:"size:36;not null"`
	DessertName       string            `json:"dessert_name" bson:"dessert_name" gorm:"size:100;not null"`
	Quantity          int               `json:"quantity" bson:"quantity" gorm:"not null"`
	TotalAmount       int               `json:"total_amount" bson:"total_amount" gorm:"not null"`
	TransactionID     string            `json:"transaction_id" bson:"transaction_id" gorm:"size:50;not null"`
	TransactionStatus TransactionStatus `json:"transaction_status" bson:"transaction_status" gorm:"size:16;default:pending"`
	ServingStatus     ServingStatus     `json:"serving_status" bson:"serving_status" gorm:"size:16;default:pending"`
	CreatedAt         time.Time         `json:"created_at" bson:"created_at" gorm:"index"`
	UpdatedAt         time.Time         `json:"updated_at" bson:"updated_at"`
}

// CreateOrderRequest is the body of POST /api/orders. OrderID is optional;
// the server generates one when it is absent.
type CreateOrderRequest struct {
	OrderID       string `json:"order_id,omitempty" binding:"omitempty,max=32"`
	Name          string `json:"name" binding:"required,nonblank,max=100"`
	Phone         string `json:"phone" binding:"required,phone10"`
	DessertID     string `json:"dessert_id" binding:"required,nonblank"`
	DessertName   string `json:"dessert_name" binding:"required,nonblank"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	TotalAmount   *int   `json:"total_amount" binding:"required,min=0"`
	TransactionID string `json:"transaction_id" binding:"required,nonblank,max=50"`
}

// UpdateOrderRequest is the body of PATCH /api/orders/:id. Absent fields are
// left untouched.
type UpdateOrderRequest struct {
	TransactionStatus *TransactionStatus `json:"transaction_status,omitempty" binding:"omitempty,oneof=pending verified failed"`
	ServingStatus     *ServingStatus     `json:"serving_status,omitempty" binding:"omitempty,oneof=pending preparing served"`
}

func (r UpdateOrderRequest) Empty() bool {
	return r.TransactionStatus == nil && r.ServingStatus == nil
}

// Fields returns the column/document updates keyed by their stored names.
func (r UpdateOrderRequest) Fields() map[string]any {
	fields := map[string]any{}
	if r.TransactionStatus != nil {
		fields["transaction_status"] = string(*r.TransactionStatus)
	}
	if r.ServingStatus != nil {
		fields["serving_status"] = string(*r.ServingStatus)
	}
	return fields
}
