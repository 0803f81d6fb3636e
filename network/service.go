package network

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bitfsorg/walletsdk-go/block"
)

// NodeClient is the node-facing collaborator of the transaction builder.
type NodeClient interface {
	// Info returns the node's network parameters.
	Info(ctx context.Context) (*NodeInfo, error)

	// OutputWithMetadata returns an output and its ledger state.
	OutputWithMetadata(ctx context.Context, id block.OutputID) (*OutputResponse, error)

	// SubmitPayload sends a signed transaction and returns its ID.
	SubmitPayload(ctx context.Context, payload *block.TransactionPayload) (block.TransactionID, error)
}

// NodeInfo describes the network a node is attached to.
type NodeInfo struct {
	Name                     string `json:"name"`
	ProtocolName             string `json:"protocolName"`
	NetworkID                uint64 `json:"networkId,string"`
	Bech32HRP                string `json:"bech32Hrp"`
	LatestMilestoneIndex     uint32 `json:"latestMilestoneIndex"`
	LatestMilestoneTimestamp uint32 `json:"latestMilestoneTimestamp"`
}

// OutputResponse is an output together with its metadata.
type OutputResponse struct {
	Output   block.Output
	Metadata block.OutputMetadata
}

type outputResponseJSON struct {
	Output   json.RawMessage      `json:"output"`
	Metadata block.OutputMetadata `json:"metadata"`
}

func (r *OutputResponse) MarshalJSON() ([]byte, error) {
	out, err := block.Outputs.EncodeJSON(r.Output)
	if err != nil {
		return nil, err
	}
	return json.Marshal(outputResponseJSON{Output: out, Metadata: r.Metadata})
}

func (r *OutputResponse) UnmarshalJSON(data []byte) error {
	var in outputResponseJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	out, err := block.Outputs.DecodeJSON(in.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	r.Output = out
	r.Metadata = in.Metadata
	return nil
}
