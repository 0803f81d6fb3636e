package network

import (
	"context"

	"github.com/bitfsorg/walletsdk-go/block"
)

// MockNodeClient is a test double for NodeClient.
// All function fields must be set before the corresponding method is called.
type MockNodeClient struct {
	InfoFn               func(ctx context.Context) (*NodeInfo, error)
	OutputWithMetadataFn func(ctx context.Context, id block.OutputID) (*OutputResponse, error)
	SubmitPayloadFn      func(ctx context.Context, payload *block.TransactionPayload) (block.TransactionID, error)
}

func (m *MockNodeClient) Info(ctx context.Context) (*NodeInfo, error) {
	return m.InfoFn(ctx)
}
func (m *MockNodeClient) OutputWithMetadata(ctx context.Context, id block.OutputID) (*OutputResponse, error) {
	return m.OutputWithMetadataFn(ctx, id)
}
func (m *MockNodeClient) SubmitPayload(ctx context.Context, payload *block.TransactionPayload) (block.TransactionID, error) {
	return m.SubmitPayloadFn(ctx, payload)
}
