package repository

import (
	"gorm.io/gorm"

	"cartpay/internal/models"
)

// SessionRepository handles payment session database operations.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new payment session row.
func (r *SessionRepository) Create(session *models.PaymentSession) error {
	return r.db.Create(session).Error
}

// FindByOrderID returns a session by its gateway order id.
func (r *SessionRepository) FindByOrderID(orderID string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	if err := r.db.Where("order_id = ?", orderID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateStatus sets the lifecycle status of a session.
func (r *SessionRepository) UpdateStatus(orderID, status string) error {
	return r.db.Model(&models.PaymentSession{}).
		Where("order_id = ?", orderID).
		Update("status", status).Error
}

// MarkReplaced records that a session was superseded by a revision order.
func (r *SessionRepository) MarkReplaced(orderID, replacedBy string) error {
	return r.db.Model(&models.PaymentSession{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":      "canceled",
			"replaced_by": replacedBy,
		}).Error
}

// ListPending returns sessions still awaiting a gateway outcome, oldest
// first, capped at limit. Used by the reconciler.
func (r *SessionRepository) ListPending(limit int) ([]models.PaymentSession, error) {
	if limit <= 0 {
		limit = 100
	}
	var sessions []models.PaymentSession
	err := r.db.Where("status IN ?", []string{"pending", "authorized"}).
		Order("created_at ASC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// FindAll returns sessions with pagination and search.
func (r *SessionRepository) FindAll(limit, page int, query string) ([]models.PaymentSession, int64, error) {
	var sessions []models.PaymentSession
	var total int64

	db := r.db.Model(&models.PaymentSession{})
	if query != "" {
		search := "%" + query + "%"
		db = db.Where("order_id LIKE ? OR cf_order_id LIKE ? OR status LIKE ?", search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}
