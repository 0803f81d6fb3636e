package network

import (
	"context"
	"time"

	"github.com/bitfsorg/walletsdk-go/block"
)

type (
	// Metrics records the outcome of one node operation.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// ObservedClient reports every call of the wrapped NodeClient to Metrics.
type ObservedClient struct {
	client  NodeClient
	metrics Metrics
}

var _ NodeClient = (*ObservedClient)(nil)

func NewObservedClient(client NodeClient, metrics Metrics) *ObservedClient {
	return &ObservedClient{
		client:  client,
		metrics: metrics,
	}
}

func (o *ObservedClient) Info(ctx context.Context) (info *NodeInfo, err error) {
	started := time.Now()
	defer func() {
		o.metrics.Observe("info", err, started)
	}()
	return o.client.Info(ctx)
}

func (o *ObservedClient) OutputWithMetadata(ctx context.Context, id block.OutputID) (resp *OutputResponse, err error) {
	started := time.Now()
	defer func() {
		o.metrics.Observe("output_with_metadata", err, started)
	}()
	return o.client.OutputWithMetadata(ctx, id)
}

func (o *ObservedClient) SubmitPayload(ctx context.Context, payload *block.TransactionPayload) (id block.TransactionID, err error) {
	started := time.Now()
	defer func() {
		o.metrics.Observe("submit_payload", err, started)
	}()
	return o.client.SubmitPayload(ctx, payload)
}
