package domain

import "time"

type EventType string

const (
	EventItemCreated   EventType = "item.created"
	EventItemUpdated   EventType = "item.updated"
	EventItemDeleted   EventType = "item.deleted"
	EventItemPurchased EventType = "item.purchased"
	EventItemRestocked EventType = "item.restocked"
)

type InventoryEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ItemID    ItemID    `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Delta     int       `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}
