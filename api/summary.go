package api

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/variant"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// Summary is the human-reviewable view of a prepared transaction.
type Summary struct {
	SigningHash  string          `json:"signingHash"`
	NetworkID    uint64          `json:"networkId,string"`
	CreationTime uint32          `json:"creationTime"`
	State        string          `json:"state"`
	Inputs       []InputSummary  `json:"inputs"`
	Outputs      []OutputSummary `json:"outputs"`
	Consumed     decimal.Decimal `json:"consumed"`
	Created      decimal.Decimal `json:"created"`
	Rewards      decimal.Decimal `json:"rewards"`
}

type InputSummary struct {
	OutputID block.OutputID `json:"outputId"`
	Kind     string         `json:"kind"`
	Amount   uint64         `json:"amount,string"`
	Owner    string         `json:"owner,omitempty"`
	Chain    *wallet.Chain  `json:"chain,omitempty"`
}

type OutputSummary struct {
	Kind      string `json:"kind"`
	Amount    uint64 `json:"amount,string"`
	Address   string `json:"address,omitempty"`
	Remainder bool   `json:"remainder,omitempty"`
}

var outputKinds = map[uint8]string{
	block.OutputTreasury: "treasury",
	block.OutputBasic:    "basic",
	block.OutputAlias:    "alias",
	block.OutputNft:      "nft",
}

func kindName(o block.Output) string {
	if name, ok := outputKinds[o.Kind()]; ok {
		return name
	}
	return fmt.Sprintf("kind-%d", o.Kind())
}

// Summarize describes p with addresses rendered for hrp.
func Summarize(p *prepared.PreparedTransactionData, hrp string) (*Summary, error) {
	hash := p.SigningHash()
	essence := p.Essence()
	s := &Summary{
		SigningHash:  fmt.Sprintf("0x%x", hash[:]),
		NetworkID:    essence.NetworkID,
		CreationTime: essence.CreationTime,
		State:        p.State().String(),
		Rewards:      p.TotalRewards(),
	}

	for _, rec := range p.Inputs() {
		owner, err := render(hrp, rec.Output.UnlockAddress(essence.CreationTime))
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", rec.OutputID(), err)
		}
		s.Inputs = append(s.Inputs, InputSummary{
			OutputID: rec.OutputID(),
			Kind:     kindName(rec.Output),
			Amount:   rec.Output.Deposit(),
			Owner:    owner,
			Chain:    rec.Chain,
		})
		s.Consumed = s.Consumed.Add(amount(rec.Output.Deposit()))
	}

	remainders := p.Remainders()
	for i, out := range essence.Outputs {
		addr, err := render(hrp, out.UnlockAddress(essence.CreationTime))
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		entry := OutputSummary{Kind: kindName(out), Amount: out.Deposit(), Address: addr}
		for _, r := range remainders {
			if variant.Equal(r.Output, out) {
				entry.Remainder = true
				break
			}
		}
		s.Outputs = append(s.Outputs, entry)
		s.Created = s.Created.Add(amount(out.Deposit()))
	}
	return s, nil
}

func render(hrp string, addr block.Address) (string, error) {
	if addr == nil {
		return "", nil
	}
	return block.Bech32(hrp, addr)
}

func amount(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
