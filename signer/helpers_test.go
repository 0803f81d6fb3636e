package signer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testWallet(t testing.TB) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWalletFromMnemonic(testMnemonic, "", &wallet.MainNet)
	require.NoError(t, err)
	return w
}

// testKey returns the chain m/44'/4219'/account'/0'/index' and the address
// it derives in w.
func testKey(t testing.TB, w *wallet.Wallet, account, index uint32) (*wallet.Chain, *block.KeyAddress) {
	t.Helper()
	kp, err := w.DeriveAccountChain(account, wallet.ExternalChain, index)
	require.NoError(t, err)
	c := kp.Chain
	return &c, kp.Address()
}

type spend struct {
	out   block.Output
	chain *wallet.Chain
}

// testEnvelope spends each output in order and pays the total to an NFT
// address.
func testEnvelope(t testing.TB, spends ...spend) *prepared.PreparedTransactionData {
	t.Helper()
	var tx block.TransactionID
	tx[0] = 0x5e

	records := make([]*prepared.InputSigningData, len(spends))
	inputs := make([]block.Input, len(spends))
	consumed := make([]block.Output, len(spends))
	var total uint64
	for i, s := range spends {
		id := block.NewOutputID(tx, uint16(i))
		meta := &block.OutputMetadata{TransactionID: tx, OutputIndex: uint16(i), LedgerIndex: 1}
		rec, err := prepared.NewInputSigningData(s.out, meta, s.chain)
		require.NoError(t, err)
		in, err := block.UtxoInputFromOutputID(id)
		require.NoError(t, err)
		records[i] = rec
		inputs[i] = in
		consumed[i] = s.out
		total += s.out.Deposit()
	}

	essence := &block.TransactionEssence{
		NetworkID:        wallet.MainNet.NetworkID(),
		CreationTime:     1_700_000_000,
		Inputs:           inputs,
		InputsCommitment: block.ComputeInputsCommitment(consumed),
		Outputs:          []block.Output{&block.BasicOutput{Amount: total, Address: &block.NftAddress{NftID: block.NftID{1}}}},
	}
	p, err := prepared.New(essence, records, nil, nil)
	require.NoError(t, err)
	return p
}

func basic(amount uint64, addr block.Address) *block.BasicOutput {
	return &block.BasicOutput{Amount: amount, Address: addr}
}
