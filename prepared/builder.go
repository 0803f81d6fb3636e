package prepared

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/network"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// Spend names an output to consume and, for key-owned outputs, the chain
// of the owning key.
type Spend struct {
	OutputID block.OutputID
	Chain    *wallet.Chain
}

// Request describes a transaction to prepare. Spends are consumed in the
// given order. Any value left after Outputs goes to RemainderAddress.
type Request struct {
	Spends           []Spend
	Outputs          []block.Output
	RemainderAddress block.Address
	RemainderChain   *wallet.Chain
	Rewards          map[block.OutputID]decimal.Decimal
}

// Builder assembles envelopes from outputs fetched from a node.
type Builder struct {
	client network.NodeClient
	logger *zap.Logger
	now    func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// WithClock sets the time source for the essence creation time.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder returns a builder that looks outputs up through client.
func NewBuilder(client network.NodeClient, opts ...BuilderOption) *Builder {
	b := &Builder{client: client, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Prepare fetches every spent output, computes change, and returns an
// Unsigned envelope whose records follow req.Spends order.
func (b *Builder) Prepare(ctx context.Context, req Request) (*PreparedTransactionData, error) {
	if len(req.Spends) == 0 {
		return nil, ErrEmptyInputs
	}

	info, err := b.client.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepared: node info: %w", err)
	}

	inputs := make([]block.Input, len(req.Spends))
	records := make([]*InputSigningData, len(req.Spends))
	consumed := make([]block.Output, len(req.Spends))
	var total uint64
	for i, s := range req.Spends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := b.client.OutputWithMetadata(ctx, s.OutputID)
		if err != nil {
			return nil, fmt.Errorf("prepared: spend %d: %w", i, err)
		}
		if resp.Metadata.IsSpent {
			return nil, fmt.Errorf("%w: %s", ErrOutputSpent, s.OutputID)
		}
		meta := resp.Metadata
		rec, err := NewInputSigningData(resp.Output, &meta, s.Chain)
		if err != nil {
			return nil, fmt.Errorf("spend %d: %w", i, err)
		}
		in, err := block.UtxoInputFromOutputID(s.OutputID)
		if err != nil {
			return nil, fmt.Errorf("spend %d: %w", i, err)
		}
		inputs[i] = in
		records[i] = rec
		consumed[i] = resp.Output
		var carry uint64
		if total, carry = bits.Add64(total, resp.Output.Deposit(), 0); carry != 0 {
			return nil, fmt.Errorf("%w: spent outputs", ErrAmountOverflow)
		}
	}

	outputs := append([]block.Output(nil), req.Outputs...)
	var spent uint64
	for _, o := range outputs {
		if o == nil {
			return nil, fmt.Errorf("%w: output", ErrNilParam)
		}
		var carry uint64
		if spent, carry = bits.Add64(spent, o.Deposit(), 0); carry != 0 {
			return nil, fmt.Errorf("%w: new outputs", ErrAmountOverflow)
		}
	}
	if spent > total {
		return nil, fmt.Errorf("%w: inputs hold %d, outputs need %d", ErrInsufficientFunds, total, spent)
	}

	var remainders []*Remainder
	if change := total - spent; change > 0 {
		if req.RemainderAddress == nil {
			return nil, fmt.Errorf("%w: %d left over", ErrNoRemainderAddress, change)
		}
		out := &block.BasicOutput{Amount: change, Address: req.RemainderAddress}
		rem, err := NewRemainder(out, req.RemainderAddress, req.RemainderChain)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
		remainders = append(remainders, rem)
	}

	essence := &block.TransactionEssence{
		NetworkID:        info.NetworkID,
		CreationTime:     uint32(b.now().Unix()),
		Inputs:           inputs,
		InputsCommitment: block.ComputeInputsCommitment(consumed),
		Outputs:          outputs,
	}
	p, err := New(essence, records, remainders, req.Rewards)
	if err != nil {
		return nil, err
	}

	hash := p.SigningHash()
	b.logger.Debug("prepared transaction",
		zap.Int("inputs", len(inputs)),
		zap.Int("outputs", len(outputs)),
		zap.Int("remainders", len(remainders)),
		zap.Uint64("network_id", info.NetworkID),
		zap.String("signing_hash", fmt.Sprintf("%x", hash[:])),
	)
	return p, nil
}
