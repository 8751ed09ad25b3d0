package razorpay

import (
	"context"
	"fmt"

	"ai-imagegen-be/pkg/payment"

	razorpay "github.com/razorpay/razorpay-go"
)

type RazorpayGateway struct {
	client *razorpay.Client
}

// Ensure RazorpayGateway implements Gateway
var _ payment.Gateway = &RazorpayGateway{}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
	}
}

// CreateOrder registers an order with the provider and returns its reference.
// The SDK has no context support, so ctx only bounds the caller's intent.
func (g *RazorpayGateway) CreateOrder(_ context.Context, amountSubunits int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amountSubunits,
		"currency": currency,
		"receipt":  receipt,
	}

	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create: %w", err)
	}

	orderRef, ok := order["id"].(string)
	if !ok || orderRef == "" {
		return "", fmt.Errorf("razorpay order create: response missing order id")
	}

	return orderRef, nil
}
