// Package domain holds the message and event contracts shared between
// services. The purchase workflow runs over two durable queues: the product
// service publishes requests to ORDER and awaits results on PRODUCT; the
// order service consumes ORDER and answers on PRODUCT. Every message pair is
// tied together by the correlation id carried in the broker envelope.
package domain

import "time"

const (
	PurchaseRequestQueue = "ORDER"
	PurchaseResultQueue  = "PRODUCT"
)

// PurchaseLineItem carries the price snapshotted at request time. The order
// service never re-reads the catalog, so the total is always the sum the
// buyer saw.
type PurchaseLineItem struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Price     int64 `json:"price" validate:"gte=0"`
}

type PurchaseRequestMessage struct {
	Products       []PurchaseLineItem `json:"products" validate:"required,min=1,dive"`
	PurchaserEmail string             `json:"purchaser_email" validate:"required,email"`
	RequestedAt    time.Time          `json:"requested_at"`
}

// OrderPayload is the persisted order as seen on the wire.
type OrderPayload struct {
	ID             int64     `json:"id"`
	ProductIDs     []int64   `json:"product_ids"`
	PurchaserEmail string    `json:"purchaser_email"`
	TotalPrice     int64     `json:"total_price"`
	CreatedAt      time.Time `json:"created_at"`
}

type PurchaseResultMessage struct {
	Order OrderPayload `json:"order"`
}
