package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPlaced    = "PLACED"
	OrderStatusPacked    = "PACKED"
	OrderStatusCollected = "COLLECTED"
)

// Order states in lifecycle order
var OrderStatuses = []string{OrderStatusPlaced, OrderStatusPacked, OrderStatusCollected}

type Order struct {
	ID         uuid.UUID `json:"-"`
	Number     int64     `json:"number"`
	Status     string    `json:"status"`
	Items      []Product `json:"items"`
	PlacedAt   time.Time `json:"placed_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NextOrderStatus returns the only status an order may move to from the given one
// Transitions never skip a state and never go back
func NextOrderStatus(from string) (string, bool) {
	switch from {
	case OrderStatusPlaced:
		return OrderStatusPacked, true
	case OrderStatusPacked:
		return OrderStatusCollected, true
	default:
		return "", false
	}
}
