package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfsorg/walletsdk-go/block"
)

// Compile-time interface check.
var _ NodeClient = (*RPCClient)(nil)

// Info calls `node_info`.
func (c *RPCClient) Info(ctx context.Context) (*NodeInfo, error) {
	var info NodeInfo
	if err := c.Call(ctx, "node_info", nil, &info); err != nil {
		return nil, err
	}
	if info.ProtocolName == "" || info.Bech32HRP == "" {
		return nil, fmt.Errorf("%w: node info without protocol name or bech32 hrp", ErrInvalidResponse)
	}
	return &info, nil
}

// OutputWithMetadata calls `output_with_metadata "outputId"`. An unknown
// output (RPC code -5 or a null result) is returned as ErrOutputNotFound.
func (c *RPCClient) OutputWithMetadata(ctx context.Context, id block.OutputID) (*OutputResponse, error) {
	var result *OutputResponse
	err := c.Call(ctx, "output_with_metadata", []interface{}{id.String()}, &result)
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == CodeNotFound {
		return nil, fmt.Errorf("%w: %s", ErrOutputNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s", ErrOutputNotFound, id)
	}
	if got := result.Metadata.OutputID(); got != id {
		return nil, fmt.Errorf("%w: asked for output %s, got %s", ErrInvalidResponse, id, got)
	}
	return result, nil
}

// SubmitPayload calls `submit_payload {payload}`. RPC errors are wrapped
// with ErrSubmitRejected.
func (c *RPCClient) SubmitPayload(ctx context.Context, payload *block.TransactionPayload) (block.TransactionID, error) {
	var txID block.TransactionID
	if err := c.Call(ctx, "submit_payload", []interface{}{payload}, &txID); err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return block.TransactionID{}, fmt.Errorf("%w: %w", ErrSubmitRejected, err)
		}
		return block.TransactionID{}, err
	}
	if want := payload.ID(); txID != want {
		return block.TransactionID{}, fmt.Errorf("%w: node reported transaction %s, expected %s", ErrInvalidResponse, txID, want)
	}
	return txID, nil
}
