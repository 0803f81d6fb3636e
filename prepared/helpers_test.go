package prepared

import (
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

func testTxID(seed byte) block.TransactionID {
	var id block.TransactionID
	for i := range id {
		id[i] = seed + byte(i)
	}
	return id
}

func testMeta(id block.OutputID) *block.OutputMetadata {
	return &block.OutputMetadata{
		BlockID:              block.BlockID{0xb1},
		TransactionID:        id.TransactionID(),
		OutputIndex:          id.Index(),
		MilestoneIndexBooked: 100,
		LedgerIndex:          105,
	}
}

func testChain(t testing.TB, change, index uint32) *wallet.Chain {
	t.Helper()
	c, err := wallet.Bip44Chain(wallet.CoinTypeShimmer, 0, change, index)
	require.NoError(t, err)
	return &c
}

func testKey(t testing.TB) (*ec.PrivateKey, *block.KeyAddress) {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return priv, block.KeyAddressFromPubKey(priv.PubKey())
}

func signUnlock(t testing.TB, priv *ec.PrivateKey, hash [32]byte) *block.SignatureUnlock {
	t.Helper()
	sig, err := block.SignSecp256k1(priv, hash[:])
	require.NoError(t, err)
	return &block.SignatureUnlock{Signature: sig}
}

// fixture is an envelope with two inputs and one remainder. Input 0 is an
// alias output controlled by key; input 1 is a basic output owned by that
// alias, so only input 0 carries a chain.
type fixture struct {
	key       *ec.PrivateKey
	owner     *block.KeyAddress
	aliasID   block.AliasID
	change    *block.KeyAddress
	essence   *block.TransactionEssence
	inputs    []*InputSigningData
	remainder *Remainder
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{aliasID: block.AliasID{0xa1, 0xa5}}
	f.key, f.owner = testKey(t)
	_, f.change = testKey(t)

	tx := testTxID(1)
	aliasOut := &block.AliasOutput{Amount: 100, AliasID: f.aliasID, StateIndex: 3, StateController: f.owner, Governor: f.owner}
	basicOut := &block.BasicOutput{Amount: 50, Address: &block.AliasAddress{AliasID: f.aliasID}}

	rec0, err := NewInputSigningData(aliasOut, testMeta(block.NewOutputID(tx, 0)), testChain(t, 0, 0))
	require.NoError(t, err)
	rec1, err := NewInputSigningData(basicOut, testMeta(block.NewOutputID(tx, 1)), nil)
	require.NoError(t, err)
	f.inputs = []*InputSigningData{rec0, rec1}

	changeOut := &block.BasicOutput{Amount: 20, Address: f.change}
	f.remainder, err = NewRemainder(changeOut, f.change, testChain(t, 1, 0))
	require.NoError(t, err)

	in0, err := block.UtxoInputFromOutputID(rec0.OutputID())
	require.NoError(t, err)
	in1, err := block.UtxoInputFromOutputID(rec1.OutputID())
	require.NoError(t, err)

	f.essence = &block.TransactionEssence{
		NetworkID:        wallet.MainNet.NetworkID(),
		CreationTime:     1_700_000_000,
		Inputs:           []block.Input{in0, in1},
		InputsCommitment: block.ComputeInputsCommitment([]block.Output{aliasOut, basicOut}),
		Outputs: []block.Output{
			&block.AliasOutput{Amount: 100, AliasID: f.aliasID, StateIndex: 4, StateController: f.owner, Governor: f.owner},
			&block.BasicOutput{Amount: 30, Address: &block.NftAddress{NftID: block.NftID{9}}},
			changeOut,
		},
	}
	return f
}

func (f *fixture) envelope(t testing.TB) *PreparedTransactionData {
	t.Helper()
	p, err := New(f.essence, f.inputs, []*Remainder{f.remainder}, nil)
	require.NoError(t, err)
	return p
}

func (f *fixture) unlocks(t testing.TB, p *PreparedTransactionData) []block.Unlock {
	t.Helper()
	return []block.Unlock{
		signUnlock(t, f.key, p.SigningHash()),
		&block.AliasUnlock{Reference: 0},
	}
}
