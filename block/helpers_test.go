package block

import (
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/require"
)

func testTxID(seed byte) TransactionID {
	var id TransactionID
	for i := range id {
		id[i] = seed + byte(i)
	}
	return id
}

func testKeyAddress(seed byte) *KeyAddress {
	a := &KeyAddress{}
	for i := range a.PubKeyHash {
		a.PubKeyHash[i] = seed ^ byte(i)
	}
	return a
}

func testKey(t testing.TB) *ec.PrivateKey {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return priv
}

func testBasic(amount uint64, addr Address) *BasicOutput {
	return &BasicOutput{Amount: amount, Address: addr}
}

func testEssence(inputs ...Input) *TransactionEssence {
	return &TransactionEssence{
		NetworkID: 14364762045254553490,
		Inputs:    inputs,
		Outputs:   []Output{testBasic(1_000_000, testKeyAddress(9))},
	}
}
