// Package signer turns a prepared transaction into one unlock per input.
// A Signer never mutates the envelope; Sign performs the single
// request/response exchange and then completes the envelope.
package signer

import (
	"context"
	"fmt"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
)

// Signer produces the unlocks for a prepared transaction, in input order.
type Signer interface {
	SignTransaction(ctx context.Context, p *prepared.PreparedTransactionData) ([]block.Unlock, error)
}

// Sign asks s for the unlocks of p and completes p with them. If s fails
// or ctx is done before the unlocks arrive, p stays Unsigned.
func Sign(ctx context.Context, s Signer, p *prepared.PreparedTransactionData) (*block.TransactionPayload, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: prepared transaction", prepared.ErrNilParam)
	}
	if p.State() == prepared.Signed {
		return nil, prepared.ErrAlreadySigned
	}
	unlocks, err := s.SignTransaction(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.Complete(unlocks)
}
