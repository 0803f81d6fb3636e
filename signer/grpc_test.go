package signer

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// startRemote serves srv over an in-memory listener and returns a Remote
// connected to it.
func startRemote(t *testing.T, srv SignerServer) *Remote {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterSignerServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	r := NewRemote(cc)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// --- Remote ---

func TestRemote_Sign(t *testing.T) {
	w := testWallet(t)
	chainA, addrA := testKey(t, w, 0, 0)
	chainB, addrB := testKey(t, w, 2, 7)
	r := startRemote(t, &Server{Signer: NewMnemonicSigner(w)})

	p := testEnvelope(t,
		spend{basic(10, addrA), chainA},
		spend{basic(20, addrB), chainB},
		spend{basic(30, addrA), chainA},
	)
	payload, err := Sign(context.Background(), r, p)
	require.NoError(t, err)
	assert.Equal(t, prepared.Signed, p.State())
	require.Len(t, payload.Unlocks, 3)
	assert.Equal(t, &block.ReferenceUnlock{Reference: 0}, payload.Unlocks[2])

	local, err := NewMnemonicSigner(w).SignTransaction(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, local, payload.Unlocks, "secp256k1 signing is deterministic")
}

func TestRemote_ErrorIdentity(t *testing.T) {
	w := testWallet(t)
	_, addrA := testKey(t, w, 0, 0)
	chainB, _ := testKey(t, w, 0, 1)
	iotaChain, err := wallet.Bip44Chain(wallet.CoinTypeIOTA, 0, 0, 0)
	require.NoError(t, err)

	tests := []struct {
		name    string
		spends  []spend
		wantErr error
	}{
		{"key mismatch", []spend{{basic(1, addrA), chainB}}, ErrKeyMismatch},
		{"missing chain", []spend{{basic(1, addrA), nil}}, ErrMissingChain},
		{"coin type", []spend{{basic(1, addrA), &iotaChain}}, wallet.ErrCoinTypeMismatch},
		{"unsupported owner", []spend{{basic(1, &block.AliasAddress{AliasID: block.AliasID{9}}), nil}}, ErrUnsupportedOwner},
	}

	r := startRemote(t, &Server{Signer: NewMnemonicSigner(w)})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testEnvelope(t, tt.spends...)
			_, err := Sign(context.Background(), r, p)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, prepared.Unsigned, p.State())
		})
	}
}

func TestRemote_ServerRejectsBadUnlocks(t *testing.T) {
	w := testWallet(t)
	chainA, addrA := testKey(t, w, 0, 0)
	chainB, addrB := testKey(t, w, 0, 1)

	swapping := signerFunc(func(ctx context.Context, p *prepared.PreparedTransactionData) ([]block.Unlock, error) {
		unlocks, err := NewMnemonicSigner(w).SignTransaction(ctx, p)
		if err != nil {
			return nil, err
		}
		return []block.Unlock{unlocks[1], unlocks[0]}, nil
	})
	r := startRemote(t, &Server{Signer: swapping})

	p := testEnvelope(t, spend{basic(1, addrA), chainA}, spend{basic(2, addrB), chainB})
	_, err := Sign(context.Background(), r, p)
	assert.ErrorIs(t, err, prepared.ErrUnlockMismatch)
	assert.Equal(t, prepared.Unsigned, p.State())
}

func TestRemote_Timeout(t *testing.T) {
	w := testWallet(t)
	chain, addr := testKey(t, w, 0, 0)

	slow := signerFunc(func(ctx context.Context, _ *prepared.PreparedTransactionData) ([]block.Unlock, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	r := startRemote(t, &Server{Signer: slow})
	r.Timeout = 50 * time.Millisecond

	p := testEnvelope(t, spend{basic(1, addr), chain})
	_, err := Sign(context.Background(), r, p)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, prepared.Unsigned, p.State())
}

func TestRemote_Unavailable(t *testing.T) {
	w := testWallet(t)
	chain, addr := testKey(t, w, 0, 0)

	lis := bufconn.Listen(1 << 10)
	require.NoError(t, lis.Close())
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	r := NewRemote(cc)
	defer r.Close()

	p := testEnvelope(t, spend{basic(1, addr), chain})
	_, err = Sign(context.Background(), r, p)
	assert.ErrorIs(t, err, ErrUnavailable)
}

// --- Server ---

func TestServer_Guards(t *testing.T) {
	t.Run("no signer", func(t *testing.T) {
		_, err := (&Server{}).SignTransaction(context.Background(), wrapperspb.Bytes([]byte(`{}`)))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	})

	t.Run("malformed envelope", func(t *testing.T) {
		s := &Server{Signer: NewMnemonicSigner(testWallet(t))}
		_, err := s.SignTransaction(context.Background(), wrapperspb.Bytes([]byte(`{"transaction":`)))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("unimplemented", func(t *testing.T) {
		r := startRemote(t, UnimplementedSignerServer{})
		_, err := r.client.SignTransaction(context.Background(), wrapperspb.Bytes(nil))
		assert.Equal(t, codes.Unimplemented, status.Code(err))
	})
}

// --- error mapping ---

func TestMapErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"canceled", context.Canceled, codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"unlock mismatch", prepared.ErrUnlockMismatch, codes.FailedPrecondition},
		{"missing metadata", prepared.ErrMissingMetadata, codes.InvalidArgument},
		{"other", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(mapErr(tt.err)))
		})
	}
	assert.NoError(t, mapErr(nil))
}

func TestMapRPC(t *testing.T) {
	wrapped := status.Error(codes.FailedPrecondition, "input 0: "+ErrKeyMismatch.Error()+": chain m/44'")
	assert.ErrorIs(t, mapRPC(wrapped), ErrKeyMismatch)

	plain := status.Error(codes.Internal, "disk on fire")
	assert.Equal(t, plain, mapRPC(plain))

	notStatus := errors.New("plain")
	assert.Equal(t, notStatus, mapRPC(notStatus))
	assert.NoError(t, mapRPC(nil))
}
