package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"stockbook/internal/infra"

	"github.com/rs/zerolog/log"
)

const JobTypeLowStock = "low_stock_alert"

// LowStockAlert is the payload for JobTypeLowStock. Quantities are carried
// as decimal strings so the envelope never touches float arithmetic.
type LowStockAlert struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      string `json:"quantity"`
	MinStockLevel string `json:"min_stock_level"`
}

// AlertWorker emails the shop owner when a product drops to its minimum
// stock level. SMTP calls go through a circuit breaker so a dead mail
// server does not pile up blocked workers.
type AlertWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	to     string
}

func NewAlertWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, to string) *AlertWorker {
	return &AlertWorker{mailer: mailer, cb: cb, to: to}
}

func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload LowStockAlert
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if w.to == "" {
		log.Warn().Msg("alert_worker: no alert recipient configured, skipping")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s", payload.ProductName)
	body := fmt.Sprintf(
		"Product %q (id %s) is down to %s, at or below its minimum of %s.\nRestock soon.",
		payload.ProductName, payload.ProductID, payload.Quantity, payload.MinStockLevel,
	)

	err := w.cb.Execute(func() error {
		return w.mailer.Send(w.to, subject, body)
	})
	if err != nil {
		log.Error().Err(err).Str("product_id", payload.ProductID).Msg("alert_worker: send failed")
		return err
	}
	log.Info().Str("product_id", payload.ProductID).Msg("alert_worker: low stock alert sent")
	return nil
}
