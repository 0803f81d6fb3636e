package signer

import (
	"context"
	"time"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
)

type (
	// Metrics records the outcome of one signing request.
	Metrics interface {
		ObserveSign(err error, inputs int, started time.Time)
	}
)

// ObservedSigner reports every request of the wrapped Signer to Metrics.
type ObservedSigner struct {
	signer  Signer
	metrics Metrics
}

var _ Signer = (*ObservedSigner)(nil)

func NewObservedSigner(s Signer, metrics Metrics) *ObservedSigner {
	return &ObservedSigner{signer: s, metrics: metrics}
}

func (o *ObservedSigner) SignTransaction(ctx context.Context, p *prepared.PreparedTransactionData) (unlocks []block.Unlock, err error) {
	started := time.Now()
	defer func() {
		o.metrics.ObserveSign(err, len(p.Inputs()), started)
	}()
	return o.signer.SignTransaction(ctx, p)
}
