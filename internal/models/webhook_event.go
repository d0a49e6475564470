package models

import "time"

// WebhookEvent maps to the webhook_events table: an audit row per processed
// gateway webhook delivery.
type WebhookEvent struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Provider  string    `gorm:"column:provider;size:64" json:"provider"`
	OrderID   string    `gorm:"column:order_id;size:128;index" json:"order_id"`
	Action    string    `gorm:"column:action;size:32" json:"action"`
	Payload   string    `gorm:"column:payload;type:text" json:"payload"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
