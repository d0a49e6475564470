// Package reconcile polls the gateway for sessions still awaiting an
// outcome and applies the same transitions the webhook path would.
package reconcile

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"cartpay/internal/models"
	"cartpay/internal/payment"
	"cartpay/internal/repository"
)

// SessionStore is the slice of the session repository the reconciler uses.
type SessionStore interface {
	ListPending(limit int) ([]models.PaymentSession, error)
	UpdateStatus(orderID, status string) error
}

var _ SessionStore = (*repository.SessionRepository)(nil)

// Reconciler drives pending sessions to their gateway-side outcome.
type Reconciler struct {
	sessions SessionStore
	registry *payment.Registry
	logger   *zap.Logger
}

func New(sessions SessionStore, registry *payment.Registry, logger *zap.Logger) *Reconciler {
	return &Reconciler{sessions: sessions, registry: registry, logger: logger}
}

// Run polls one batch of pending sessions. Errors on individual sessions
// are logged and skipped; a gateway outage must not wedge the whole batch.
func (r *Reconciler) Run(ctx context.Context, batchSize int) {
	rows, err := r.sessions.ListPending(batchSize)
	if err != nil {
		r.logger.Error("reconcile: listing pending sessions failed", zap.Error(err))
		return
	}
	if len(rows) == 0 {
		return
	}

	updated := 0
	for i := range rows {
		if r.reconcileOne(ctx, &rows[i]) {
			updated++
		}
	}
	r.logger.Info("reconcile pass finished",
		zap.Int("checked", len(rows)),
		zap.Int("updated", updated))
}

func (r *Reconciler) reconcileOne(ctx context.Context, row *models.PaymentSession) bool {
	provider, err := r.registry.Get(row.Provider)
	if err != nil {
		r.logger.Warn("reconcile: session references unknown provider",
			zap.String("order_id", row.OrderID),
			zap.String("provider", row.Provider))
		return false
	}

	status, err := provider.GetPaymentStatus(ctx, sessionData(row))
	if err != nil {
		r.logger.Error("reconcile: status fetch failed", zap.Error(err),
			zap.String("order_id", row.OrderID))
		return false
	}
	if string(status) == row.Status {
		return false
	}

	if err := r.sessions.UpdateStatus(row.OrderID, string(status)); err != nil {
		r.logger.Error("reconcile: status update failed", zap.Error(err),
			zap.String("order_id", row.OrderID))
		return false
	}
	r.logger.Info("reconcile: session transitioned",
		zap.String("order_id", row.OrderID),
		zap.String("from", row.Status),
		zap.String("to", string(status)))
	return true
}

func sessionData(row *models.PaymentSession) map[string]interface{} {
	data := make(map[string]interface{})
	if row.RawResponse != "" {
		_ = json.Unmarshal([]byte(row.RawResponse), &data)
	}
	if _, ok := data["order_id"]; !ok {
		data["order_id"] = row.OrderID
	}
	return data
}
