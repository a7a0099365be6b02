package payout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ManualProvider records a reference for transfers an operator performs
// out-of-band. Swap in a real gateway provider once one is integrated.
type ManualProvider struct{}

func (p *ManualProvider) Disburse(ctx context.Context, req Request) (*Result, error) {
	return &Result{
		Reference: fmt.Sprintf("manual_%s", uuid.New().String()),
		Status:    "SENT",
	}, nil
}
