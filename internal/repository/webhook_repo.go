package repository

import (
	"gorm.io/gorm"

	"cartpay/internal/models"
)

// WebhookEventRepository handles webhook audit rows.
type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Create inserts a processed webhook event.
func (r *WebhookEventRepository) Create(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

// FindByOrderID returns all recorded events for an order, newest first.
func (r *WebhookEventRepository) FindByOrderID(orderID string) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&events).Error
	return events, err
}
