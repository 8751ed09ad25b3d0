package payment

import "context"

// Gateway creates provider-side orders for credit purchases. The receipt is
// the internal transaction id, which makes retried order creations
// distinguishable on the provider's side.
type Gateway interface {
	CreateOrder(ctx context.Context, amountSubunits int64, currency, receipt string) (orderRef string, err error)
}
