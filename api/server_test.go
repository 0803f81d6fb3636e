package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/metrics"
	"github.com/bitfsorg/walletsdk-go/network"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/signer"
	"github.com/bitfsorg/walletsdk-go/store"
	"github.com/bitfsorg/walletsdk-go/variant"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type env struct {
	wallet *wallet.Wallet
	chain  *wallet.Chain
	owner  *block.KeyAddress
}

func newEnv(t *testing.T) *env {
	t.Helper()
	w, err := wallet.NewWalletFromMnemonic(testMnemonic, "", &wallet.MainNet)
	require.NoError(t, err)
	kp, err := w.DeriveAccountChain(0, wallet.ExternalChain, 0)
	require.NoError(t, err)
	c := kp.Chain
	return &env{wallet: w, chain: &c, owner: kp.Address()}
}

// envelope spends one output of owner (with chain) and sends 600 to an NFT
// address with 400 back to owner as remainder.
func (e *env) envelope(t *testing.T, chain *wallet.Chain) *prepared.PreparedTransactionData {
	t.Helper()
	tx := block.TransactionID{0xe1}
	spent := &block.BasicOutput{Amount: 1000, Address: e.owner}
	rec, err := prepared.NewInputSigningData(spent, &block.OutputMetadata{TransactionID: tx, LedgerIndex: 3}, chain)
	require.NoError(t, err)
	in, err := block.NewUtxoInput(tx, 0)
	require.NoError(t, err)

	change := &block.BasicOutput{Amount: 400, Address: e.owner}
	rem, err := prepared.NewRemainder(change, e.owner, e.chain)
	require.NoError(t, err)

	essence := &block.TransactionEssence{
		NetworkID:        wallet.MainNet.NetworkID(),
		CreationTime:     1_700_000_000,
		Inputs:           []block.Input{in},
		InputsCommitment: block.ComputeInputsCommitment([]block.Output{spent}),
		Outputs: []block.Output{
			&block.BasicOutput{Amount: 600, Address: &block.NftAddress{NftID: block.NftID{7}}},
			change,
		},
	}
	p, err := prepared.New(essence, []*prepared.InputSigningData{rec}, []*prepared.Remainder{rem}, nil)
	require.NoError(t, err)
	return p
}

func body(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func do(s *Server, method, path string, b *bytes.Reader) *httptest.ResponseRecorder {
	if b == nil {
		b = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, b)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// --- health and metrics ---

func TestHealthz(t *testing.T) {
	s := NewServer(nil, &wallet.TestNet)
	rec := do(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","network":"testnet"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(nil, &wallet.MainNet, WithMetrics(metrics.NewHTTP()))
	do(s, http.MethodGet, "/healthz", nil)

	rec := do(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `walletsdk_http_requests_total{code="200",method="GET",route="/healthz"}`)
}

type recordedRequest struct {
	method, route string
	code          int
}

type fakeMetrics struct{ seen []recordedRequest }

func (f *fakeMetrics) ObserveRequest(method, route string, code int, _ time.Time) {
	f.seen = append(f.seen, recordedRequest{method, route, code})
}

func TestObserveUsesRouteTemplate(t *testing.T) {
	m := &fakeMetrics{}
	s := NewServer(nil, &wallet.MainNet, WithMetrics(m))
	do(s, http.MethodGet, "/healthz", nil)
	do(s, http.MethodGet, "/nope/123", nil)

	assert.Equal(t, []recordedRequest{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "", http.StatusNotFound},
	}, m.seen)
}

// --- inspect ---

func TestInspect(t *testing.T) {
	e := newEnv(t)
	s := NewServer(nil, &wallet.MainNet)
	p := e.envelope(t, e.chain)

	rec := do(s, http.MethodPost, "/v1/inspect", body(t, p))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sum Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	hash := p.SigningHash()
	assert.Equal(t, store.Key(hash).String(), sum.SigningHash)
	assert.Equal(t, "unsigned", strings.ToLower(sum.State))
	require.Len(t, sum.Inputs, 1)
	assert.True(t, strings.HasPrefix(sum.Inputs[0].Owner, "smr1"))
	assert.Equal(t, "m/44'/4219'/0'/0'/0'", sum.Inputs[0].Chain.String())
	assert.Equal(t, uint64(1000), sum.Inputs[0].Amount)
	require.Len(t, sum.Outputs, 2)
	assert.False(t, sum.Outputs[0].Remainder)
	assert.True(t, sum.Outputs[1].Remainder)
	assert.Equal(t, "1000", sum.Consumed.String())
	assert.Equal(t, "1000", sum.Created.String())
	assert.Equal(t, "0", sum.Rewards.String())
}

func TestInspect_BadRequests(t *testing.T) {
	e := newEnv(t)
	s := NewServer(nil, &wallet.MainNet)

	data, err := json.Marshal(e.envelope(t, e.chain))
	require.NoError(t, err)
	unknown := strings.Replace(string(data), `"type":3`, `"type":42`, 1)
	require.NotEqual(t, string(data), unknown)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"transaction":`},
		{"empty object", `{}`},
		{"unknown output kind", unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/v1/inspect", bytes.NewReader([]byte(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestOversizedBody(t *testing.T) {
	s := NewServer(nil, &wallet.MainNet, WithNode(&network.MockNodeClient{}))
	oversized := `{"transaction":` + strings.Repeat(" ", MaxBodyBytes) + `null}`

	for _, path := range []string{"/v1/inspect", "/v1/sign", "/v1/submit"} {
		t.Run(path, func(t *testing.T) {
			rec := do(s, http.MethodPost, path, bytes.NewReader([]byte(oversized)))
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

// --- sign ---

func TestSign(t *testing.T) {
	e := newEnv(t)
	st := store.NewMemStore()
	s := NewServer(signer.NewMnemonicSigner(e.wallet), &wallet.MainNet, WithStore(st))
	p := e.envelope(t, e.chain)

	rec := do(s, http.MethodPost, "/v1/sign", body(t, p))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SigningHash   string                   `json:"signingHash"`
		TransactionID block.TransactionID      `json:"transactionId"`
		Payload       block.TransactionPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, resp.Payload.ID(), resp.TransactionID)

	_, err := p.Complete(resp.Payload.Unlocks)
	require.NoError(t, err, "unlocks verify against the caller's envelope")

	k, err := store.ParseKey(resp.SigningHash)
	require.NoError(t, err)
	entries, err := st.List()
	require.NoError(t, err)
	assert.Equal(t, []store.Entry{{Key: k, Signed: true}}, entries)

	again := do(s, http.MethodPost, "/v1/sign", body(t, e.envelope(t, e.chain)))
	assert.Equal(t, http.StatusOK, again.Code, "re-signing the same envelope is idempotent for the store")
}

func TestSign_Errors(t *testing.T) {
	e := newEnv(t)
	other, err := wallet.Bip44Chain(wallet.CoinTypeShimmer, 0, 0, 1)
	require.NoError(t, err)
	iotaChain, err := wallet.Bip44Chain(wallet.CoinTypeIOTA, 0, 0, 0)
	require.NoError(t, err)

	tests := []struct {
		name  string
		chain *wallet.Chain
		want  int
	}{
		{"key mismatch", &other, http.StatusUnprocessableEntity},
		{"missing chain", nil, http.StatusUnprocessableEntity},
		{"coin type", &iotaChain, http.StatusUnprocessableEntity},
	}
	s := NewServer(signer.NewMnemonicSigner(e.wallet), &wallet.MainNet)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, "/v1/sign", body(t, e.envelope(t, tt.chain)))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	t.Run("no signer", func(t *testing.T) {
		rec := do(NewServer(nil, &wallet.MainNet), http.MethodPost, "/v1/sign", body(t, e.envelope(t, e.chain)))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// --- submit ---

func TestSubmit(t *testing.T) {
	e := newEnv(t)
	p := e.envelope(t, e.chain)
	payload, err := signer.Sign(context.Background(), signer.NewMnemonicSigner(e.wallet), p)
	require.NoError(t, err)

	var got *block.TransactionPayload
	node := &network.MockNodeClient{
		SubmitPayloadFn: func(_ context.Context, tp *block.TransactionPayload) (block.TransactionID, error) {
			got = tp
			return tp.ID(), nil
		},
	}
	s := NewServer(nil, &wallet.MainNet, WithNode(node))
	rec := do(s, http.MethodPost, "/v1/submit", body(t, payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, got)
	assert.Equal(t, payload.ID(), got.ID())
	assert.Contains(t, rec.Body.String(), payload.ID().String())

	node.SubmitPayloadFn = func(context.Context, *block.TransactionPayload) (block.TransactionID, error) {
		return block.TransactionID{}, network.ErrSubmitRejected
	}
	rec = do(s, http.MethodPost, "/v1/submit", body(t, payload))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(NewServer(nil, &wallet.MainNet), http.MethodPost, "/v1/submit", body(t, payload))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- error mapping ---

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{signer.ErrUnavailable, http.StatusBadGateway},
		{prepared.ErrUnlockMismatch, http.StatusUnprocessableEntity},
		{prepared.ErrAlreadySigned, http.StatusConflict},
		{variant.ErrUnknownVariant, http.StatusBadRequest},
		{wallet.ErrInvalidPath, http.StatusBadRequest},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}
