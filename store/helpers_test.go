package store

import (
	"path/filepath"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// testEnvelope returns an envelope spending one key-owned output and the
// key that signs it. seed varies the spent transaction.
func testEnvelope(t testing.TB, seed byte) (*prepared.PreparedTransactionData, *ec.PrivateKey) {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	owner := block.KeyAddressFromPubKey(priv.PubKey())
	chain, err := wallet.Bip44Chain(wallet.CoinTypeShimmer, 0, 0, uint32(seed))
	require.NoError(t, err)

	tx := block.TransactionID{seed, 0x51}
	spent := &block.BasicOutput{Amount: 1000, Address: owner}
	meta := &block.OutputMetadata{TransactionID: tx, OutputIndex: 0, LedgerIndex: 9}
	rec, err := prepared.NewInputSigningData(spent, meta, &chain)
	require.NoError(t, err)
	in, err := block.NewUtxoInput(tx, 0)
	require.NoError(t, err)

	essence := &block.TransactionEssence{
		NetworkID:        wallet.MainNet.NetworkID(),
		CreationTime:     1_700_000_000,
		Inputs:           []block.Input{in},
		InputsCommitment: block.ComputeInputsCommitment([]block.Output{spent}),
		Outputs:          []block.Output{&block.BasicOutput{Amount: 1000, Address: &block.NftAddress{NftID: block.NftID{seed}}}},
	}
	p, err := prepared.New(essence, []*prepared.InputSigningData{rec}, nil, nil)
	require.NoError(t, err)
	return p, priv
}

// signEnvelope completes a copy of p and returns the payload.
func signEnvelope(t testing.TB, p *prepared.PreparedTransactionData, priv *ec.PrivateKey) *block.TransactionPayload {
	t.Helper()
	hash := p.SigningHash()
	sig, err := block.SignSecp256k1(priv, hash[:])
	require.NoError(t, err)
	payload, err := p.Complete([]block.Unlock{&block.SignatureUnlock{Signature: sig}})
	require.NoError(t, err)
	return payload
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("mem", func(t *testing.T) { fn(t, NewMemStore()) })
	t.Run("bolt", func(t *testing.T) {
		s, err := OpenBoltStore(filepath.Join(t.TempDir(), "store", "offsign.db"))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}
