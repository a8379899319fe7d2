package domain

import "time"

// Kafka topics fed by the transactional outbox.
const (
	UserEventsTopic  = "user_events"
	OrderEventsTopic = "order_events"
)

type UserRegisteredEvent struct {
	UserID  int64  `json:"user_id"`
	EventID int64  `json:"event_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type OrderCreatedEvent struct {
	OrderID        int64     `json:"order_id"`
	EventID        int64     `json:"event_id"`
	PurchaserEmail string    `json:"purchaser_email"`
	TotalPrice     int64     `json:"total_price"`
	CreatedAt      time.Time `json:"created_at"`
}
