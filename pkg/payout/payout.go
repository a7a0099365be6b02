package payout

import "context"

// Request describes a single UPI disbursement.
type Request struct {
	OrderID string // withdrawal order id, doubles as the idempotency key
	UpiID   string
	Amount  string // decimal string, e.g. "30.00"
}

// Result is the provider's acknowledgement of a disbursement.
type Result struct {
	Reference string
	Status    string
}

// Provider sends money out over UPI rails. Implementations must be idempotent
// on OrderID: retrying a request that already went through must not pay twice.
type Provider interface {
	Disburse(ctx context.Context, req Request) (*Result, error)
}
