package domain

import "time"

type Order struct {
	ID             int64     `db:"id" json:"id"`
	CorrelationID  string    `db:"correlation_id" json:"-"`
	PurchaserEmail string    `db:"purchaser_email" json:"purchaser_email"`
	TotalPrice     int64     `db:"total_price" json:"total_price"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Products []OrderProduct `json:"products"`
}

type OrderProduct struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"-"`
	ProductID int64 `db:"product_id" json:"product_id"`
	// Price is the per-unit price snapshotted at purchase time.
	Price int64 `db:"price" json:"price"`
}
