package commands

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletsdk-go/api"
	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/network"
	"github.com/bitfsorg/walletsdk-go/store"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// run executes the CLI with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func testAddress(t *testing.T, n *wallet.NetworkConfig, account, index uint32) (string, *wallet.KeyPair) {
	t.Helper()
	w, err := wallet.NewWalletFromMnemonic(testMnemonic, "", n)
	require.NoError(t, err)
	kp, err := w.DeriveAccountChain(account, wallet.ExternalChain, index)
	require.NoError(t, err)
	addr, err := w.Bech32Address(kp)
	require.NoError(t, err)
	return addr, kp
}

// --- keys ---

func TestMnemonic(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, "mnemonic", "--datadir", dir)
	require.NoError(t, err)
	m := strings.TrimSpace(out)
	assert.Len(t, strings.Fields(m), 24)
	assert.True(t, wallet.ValidateMnemonic(m))

	out, _, err = run(t, "mnemonic", "--datadir", dir, "--words", "12")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 12)

	_, _, err = run(t, "mnemonic", "--datadir", dir, "--words", "13")
	assert.Error(t, err)
}

func TestAddress(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFSIGN_MNEMONIC", testMnemonic)

	want, kp := testAddress(t, &wallet.MainNet, 0, 3)
	out, _, err := run(t, "address", "--datadir", dir, "--index", "3")
	require.NoError(t, err)
	assert.Equal(t, kp.Chain.String()+"\t"+want+"\n", out)

	out, _, err = run(t, "address", "--datadir", dir, kp.Chain.String())
	require.NoError(t, err)
	assert.Contains(t, out, want)

	_, _, err = run(t, "address", "--datadir", dir, "m/44'/4218'/0'/0'/0'")
	assert.ErrorIs(t, err, wallet.ErrCoinTypeMismatch)

	_, _, err = run(t, "address", "--datadir", dir, "m/44'/x")
	assert.ErrorIs(t, err, wallet.ErrInvalidPath)
}

func TestAddress_NoKey(t *testing.T) {
	t.Setenv("OFFSIGN_MNEMONIC", "")
	_, _, err := run(t, "address", "--datadir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no signing key")
}

func TestSeedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFSIGN_MNEMONIC", testMnemonic)
	t.Setenv("OFFSIGN_PASSWORD", "correct horse")

	out, _, err := run(t, "seed", "--datadir", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, seedFileName), strings.TrimSpace(out))

	t.Setenv("OFFSIGN_MNEMONIC", "")
	want, _ := testAddress(t, &wallet.MainNet, 0, 0)
	out, _, err = run(t, "address", "--datadir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, want)

	t.Setenv("OFFSIGN_PASSWORD", "wrong")
	_, _, err = run(t, "address", "--datadir", dir)
	assert.ErrorIs(t, err, wallet.ErrDecryptionFailed)
}

// --- configuration layering ---

func TestConfigLayering(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFSIGN_MNEMONIC", testMnemonic)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte("network = testnet\n"), 0600))

	out, _, err := run(t, "address", "--datadir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "\trms1", "config file")

	t.Setenv("OFFSIGN_NETWORK", "regtest")
	out, _, err = run(t, "address", "--datadir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "\ttst1", "environment over config file")

	out, _, err = run(t, "address", "--datadir", dir, "--network", "mainnet")
	require.NoError(t, err)
	assert.Contains(t, out, "\tsmr1", "flag over environment")

	_, _, err = run(t, "address", "--datadir", dir, "--network", "moon")
	assert.Error(t, err)
}

// --- prepare, inspect, sign, submit ---

// fakeNode serves node_info, output_with_metadata and submit_payload for
// the given outputs.
type fakeNode struct {
	outputs   map[block.OutputID]*network.OutputResponse
	submitted []*block.TransactionPayload
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64             `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var result any
	switch req.Method {
	case "node_info":
		result = network.NodeInfo{Name: "fake", ProtocolName: "shimmer", NetworkID: wallet.MainNet.NetworkID(), Bech32HRP: "smr"}
	case "output_with_metadata":
		var text string
		_ = json.Unmarshal(req.Params[0], &text)
		id, err := block.ParseOutputID(text)
		if err != nil || f.outputs[id] == nil {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": req.ID, "error": map[string]any{"code": -5, "message": "not found"}})
			return
		}
		result = f.outputs[id]
	case "submit_payload":
		var p block.TransactionPayload
		if err := json.Unmarshal(req.Params[0], &p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.submitted = append(f.submitted, &p)
		result = p.ID()
	default:
		http.Error(w, "unknown method", http.StatusBadRequest)
		return
	}
	raw, _ := json.Marshal(result)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": req.ID, "result": json.RawMessage(raw)})
}

func TestPrepareSignSubmit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFSIGN_MNEMONIC", testMnemonic)

	ownerText, kp := testAddress(t, &wallet.MainNet, 0, 0)
	tx := block.TransactionID{0xc0, 0xde}
	id := block.NewOutputID(tx, 1)
	node := &fakeNode{outputs: map[block.OutputID]*network.OutputResponse{
		id: {
			Output:   &block.BasicOutput{Amount: 1000, Address: kp.Address()},
			Metadata: block.OutputMetadata{TransactionID: tx, OutputIndex: 1, LedgerIndex: 12},
		},
	}}
	srv := httptest.NewServer(node)
	defer srv.Close()

	payee, err := block.Bech32("smr", &block.NftAddress{NftID: block.NftID{7}})
	require.NoError(t, err)
	preparedFile := filepath.Join(dir, "tx.prepared.json")
	signedFile := filepath.Join(dir, "tx.signed.json")

	out, _, err := run(t, "prepare", "--datadir", dir, "--node-url", srv.URL,
		"--spend", id.String()+":"+kp.Chain.String(),
		"--to", payee+":600",
		"--remainder", ownerText+":"+kp.Chain.String(),
		"--out", preparedFile)
	require.NoError(t, err)

	var sum api.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	require.Len(t, sum.Outputs, 2)
	assert.Equal(t, payee, sum.Outputs[0].Address)
	assert.True(t, sum.Outputs[1].Remainder)
	assert.Equal(t, uint64(400), sum.Outputs[1].Amount)

	out, _, err = run(t, "inspect", "--datadir", dir, preparedFile)
	require.NoError(t, err)
	assert.Contains(t, out, sum.SigningHash)

	out, stderr, err := run(t, "sign", "--datadir", dir, "--in", preparedFile, "--out", signedFile, "--record")
	require.NoError(t, err)
	assert.Contains(t, stderr, sum.SigningHash, "the summary is shown before signing")
	payload, err := store.ReadSigned(signedFile)
	require.NoError(t, err)
	assert.Equal(t, payload.ID().String(), strings.TrimSpace(out))

	st, err := store.OpenBoltStore(filepath.Join(dir, storeFileName))
	require.NoError(t, err)
	entries, err := st.List()
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Signed)
	assert.Equal(t, sum.SigningHash, entries[0].Key.String())

	out, _, err = run(t, "submit", "--datadir", dir, "--node-url", srv.URL, signedFile)
	require.NoError(t, err)
	assert.Equal(t, payload.ID().String(), strings.TrimSpace(out))
	require.Len(t, node.submitted, 1)
	assert.Equal(t, payload.ID(), node.submitted[0].ID())
}

func TestPrepare_Errors(t *testing.T) {
	dir := t.TempDir()
	srv := httptest.NewServer(&fakeNode{})
	defer srv.Close()

	owner, kp := testAddress(t, &wallet.MainNet, 0, 0)
	testnetOwner, _ := testAddress(t, &wallet.TestNet, 0, 0)
	id := block.NewOutputID(block.TransactionID{1}, 0).String()
	out := filepath.Join(dir, "p.json")

	tests := []struct {
		name string
		args []string
	}{
		{"bad output id", []string{"--spend", "0x12", "--to", owner + ":1"}},
		{"bad chain", []string{"--spend", id + ":m/x", "--to", owner + ":1"}},
		{"foreign hrp", []string{"--spend", id, "--to", testnetOwner + ":1"}},
		{"zero amount", []string{"--spend", id, "--to", owner + ":0"}},
		{"missing amount", []string{"--spend", id, "--to", owner}},
		{"unknown output", []string{"--spend", id + ":" + kp.Chain.String(), "--to", owner + ":1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"prepare", "--datadir", dir, "--node-url", srv.URL, "--out", out}, tt.args...)
			_, _, err := run(t, args...)
			assert.Error(t, err)
		})
	}

	_, _, err := run(t, "prepare", "--datadir", dir, "--node-url", srv.URL, "--out", out,
		"--spend", id+":"+kp.Chain.String(), "--to", owner+":1")
	assert.ErrorIs(t, err, network.ErrOutputNotFound)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

// --- serve ---

func TestServe_RemoteSigning(t *testing.T) {
	serverDir, clientDir := t.TempDir(), t.TempDir()
	t.Setenv("OFFSIGN_MNEMONIC", testMnemonic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pr, pw := io.Pipe()
	root := NewRootCmd()
	root.SetOut(pw)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve", "--datadir", serverDir, "--listen", "127.0.0.1:0", "--grpc", "127.0.0.1:0", "--log-level", "error"})
	done := make(chan error, 1)
	go func() {
		done <- root.ExecuteContext(ctx)
		_ = pw.Close()
	}()

	sc := bufio.NewScanner(pr)
	addrs := map[string]string{}
	for len(addrs) < 2 && sc.Scan() {
		name, addr, _ := strings.Cut(sc.Text(), " ")
		addrs[name] = addr
	}
	go func() { _, _ = io.Copy(io.Discard, pr) }()
	require.Len(t, addrs, 2)

	resp, err := http.Get("http://" + addrs["http"] + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Build a prepared file offline and sign it over gRPC from a data
	// directory that holds no key.
	_, kp := testAddress(t, &wallet.MainNet, 0, 0)
	tx := block.TransactionID{0xaa}
	spent := &block.BasicOutput{Amount: 50, Address: kp.Address()}
	node := &fakeNode{outputs: map[block.OutputID]*network.OutputResponse{
		block.NewOutputID(tx, 0): {Output: spent, Metadata: block.OutputMetadata{TransactionID: tx}},
	}}
	srv := httptest.NewServer(node)
	defer srv.Close()
	payee, err := block.Bech32("smr", &block.AliasAddress{AliasID: block.AliasID{1}})
	require.NoError(t, err)
	preparedFile := filepath.Join(clientDir, "p.json")
	_, _, err = run(t, "prepare", "--datadir", clientDir, "--node-url", srv.URL,
		"--spend", block.NewOutputID(tx, 0).String()+":"+kp.Chain.String(),
		"--to", payee+":50", "--out", preparedFile)
	require.NoError(t, err)

	t.Setenv("OFFSIGN_MNEMONIC", "")
	signedFile := filepath.Join(clientDir, "s.json")
	_, _, err = run(t, "sign", "--datadir", clientDir, "--in", preparedFile, "--out", signedFile,
		"--remote", addrs["grpc"], "--timeout", "10s")
	require.NoError(t, err)
	_, err = store.ReadSigned(signedFile)
	require.NoError(t, err)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

// --- accounts ---

func TestAccount(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OFFSIGN_MNEMONIC", testMnemonic)

	out, _, err := run(t, "account", "new", "savings", "--datadir", dir)
	require.NoError(t, err)
	assert.Equal(t, "savings\t0\n", out)
	out, _, err = run(t, "account", "new", "spending", "--datadir", dir)
	require.NoError(t, err)
	assert.Equal(t, "spending\t1\n", out)

	_, _, err = run(t, "account", "new", "savings", "--datadir", dir)
	assert.ErrorIs(t, err, wallet.ErrAccountExists)

	for i := uint32(0); i < 2; i++ {
		want, kp := testAddress(t, &wallet.MainNet, 1, i)
		out, _, err = run(t, "account", "next", "spending", "--datadir", dir)
		require.NoError(t, err)
		assert.Equal(t, kp.Chain.String()+"\t"+want+"\n", out)
	}

	out, _, err = run(t, "account", "next", "spending", "--remainder", "--datadir", dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "m/44'/4219'/1'/1'/0'\t"), out)

	_, _, err = run(t, "account", "next", "holiday", "--datadir", dir)
	assert.ErrorIs(t, err, wallet.ErrAccountNotFound)

	out, _, err = run(t, "account", "list", "--datadir", dir)
	require.NoError(t, err)
	assert.Equal(t, "savings\t0\t0\t0\nspending\t1\t2\t1\n", out)
}
