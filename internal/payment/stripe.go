package payment

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"dishuflix/internal/errors"
	"dishuflix/internal/onboarding"
)

// testPaymentMethod is Stripe's always-succeeding test card.
const testPaymentMethod = "pm_card_visa"

// StripeProvider confirms a PaymentIntent server-side with a test card.
type StripeProvider struct {
	sc     *client.API
	logger zerolog.Logger
}

func NewStripeProvider(key string, logger zerolog.Logger) *StripeProvider {
	sc := &client.API{}
	sc.Init(key, nil)

	logger = logger.With().Str("component", "payment").Str("provider", "stripe").Logger()
	logger.Info().Bool("test_mode", strings.HasPrefix(key, "sk_test")).Msg("stripe client initialized")
	return &StripeProvider{sc: sc, logger: logger}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) Checkout(ctx context.Context, order Order) (onboarding.Outcome, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(order.Amount),
		Currency:      stripe.String(strings.ToLower(order.Currency)),
		Description:   stripe.String(order.Description),
		PaymentMethod: stripe.String(testPaymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(order.Reference)
	params.AddMetadata("order_reference", order.Reference)

	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return outcomeForError(ctx, err)
	}

	p.logger.Info().Str("intent", pi.ID).Str("status", string(pi.Status)).Str("order", order.Reference).Msg("payment intent confirmed")
	return outcomeForStatus(pi.Status), nil
}

func outcomeForStatus(status stripe.PaymentIntentStatus) onboarding.Outcome {
	switch status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return onboarding.OutcomeSuccess
	case stripe.PaymentIntentStatusCanceled:
		return onboarding.OutcomeCancelled
	default:
		return onboarding.OutcomeFailure
	}
}

func outcomeForError(ctx context.Context, err error) (onboarding.Outcome, error) {
	if ctx.Err() != nil {
		return onboarding.OutcomeCancelled, nil
	}

	var se *stripe.Error
	if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
		return onboarding.OutcomeFailure, nil
	}
	return "", errors.Wrap(err, errors.CodeExternalService, "payment provider unavailable")
}
