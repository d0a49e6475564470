package models

import "time"

// PaymentSession maps to the payment_sessions table. The provider itself is
// stateless; this table is the host-side record of each checkout attempt,
// keyed by the order id submitted to the gateway.
type PaymentSession struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   string `gorm:"column:order_id;size:128;uniqueIndex" json:"order_id"`
	CfOrderID string `gorm:"column:cf_order_id;size:128" json:"cf_order_id"`
	Provider  string `gorm:"column:provider;size:64" json:"provider"`
	// Amount is stored in minor currency units, matching the platform.
	Amount   int64  `gorm:"column:amount" json:"amount"`
	Currency string `gorm:"column:currency;size:8" json:"currency"`
	Status   string `gorm:"column:status;size:32;index" json:"status"`
	// RawResponse is the opaque gateway payload returned at initiation.
	RawResponse string `gorm:"column:raw_response;type:text" json:"raw_response"`
	// ReplacedBy points at the revision order id when an update superseded
	// this session.
	ReplacedBy string    `gorm:"column:replaced_by;size:128" json:"replaced_by,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PaymentSession) TableName() string {
	return "payment_sessions"
}
