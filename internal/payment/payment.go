// Package payment is the payment surface the gate's last step talks to. A
// provider takes one fixed order and reports success, failure or cancelled.
package payment

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"dishuflix/internal/config"
	"dishuflix/internal/errors"
	"dishuflix/internal/metrics"
	"dishuflix/internal/onboarding"
)

// Order is the single line item the gate charges for.
type Order struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// NewOrder builds an order from cfg with a fresh reference.
func NewOrder(cfg config.PaymentConfig) (Order, error) {
	id, err := gonanoid.New()
	if err != nil {
		return Order{}, fmt.Errorf("generate order reference: %w", err)
	}
	return Order{
		Reference:   "ord-" + id,
		Amount:      cfg.Amount,
		Currency:    cfg.Currency,
		Description: cfg.Description,
	}, nil
}

// Provider runs a checkout. A declined payment is OutcomeFailure with a nil
// error; an error means the provider itself could not be reached.
type Provider interface {
	Name() string
	Checkout(ctx context.Context, order Order) (onboarding.Outcome, error)
}

// New returns the provider selected by cfg.Provider.
func New(cfg config.PaymentConfig, logger zerolog.Logger) (Provider, error) {
	switch cfg.Provider {
	case "mock":
		outcome, err := onboarding.ParseOutcome(cfg.MockOutcome)
		if err != nil {
			return nil, err
		}
		return &MockProvider{Outcome: outcome}, nil
	case "stripe":
		return NewStripeProvider(cfg.StripeKey, logger), nil
	}
	return nil, errors.Validationf("unknown payment provider %q", cfg.Provider)
}

// MockProvider always reports the configured outcome.
type MockProvider struct {
	Outcome onboarding.Outcome
	Err     error
	Orders  []Order
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Checkout(ctx context.Context, order Order) (onboarding.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return onboarding.OutcomeCancelled, nil
	}
	m.Orders = append(m.Orders, order)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Outcome, nil
}

// Record counts an outcome for a provider.
func Record(p Provider, outcome onboarding.Outcome, err error) {
	label := string(outcome)
	if err != nil {
		label = "error"
	}
	metrics.PaymentOutcomes.WithLabelValues(p.Name(), label).Inc()
}
