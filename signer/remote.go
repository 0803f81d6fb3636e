package signer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
)

// Remote implements Signer over the Signer gRPC service.
type Remote struct {
	cc     *grpc.ClientConn
	client SignerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var _ Signer = (*Remote)(nil)

type DialOptions struct {
	// Timeout applies per RPC when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

// Dial connects to a remote signer without transport security. It is
// meant for loopback and trusted links.
func Dial(target string, opts DialOptions) (*Remote, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	r := NewRemote(cc)
	r.Timeout = opts.Timeout
	return r, nil
}

// NewRemote wraps an existing connection.
func NewRemote(cc *grpc.ClientConn) *Remote {
	return &Remote{cc: cc, client: NewSignerClient(cc)}
}

func (r *Remote) Close() error {
	if r == nil || r.cc == nil {
		return nil
	}
	return r.cc.Close()
}

func (r *Remote) SignTransaction(ctx context.Context, p *prepared.PreparedTransactionData) ([]block.Unlock, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	reply, err := r.client.SignTransaction(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return nil, mapRPC(err)
	}
	unlocks, err := block.Unlocks.DecodeJSONList(reply.GetValue())
	if err != nil {
		return nil, fmt.Errorf("signer: remote reply: %w", err)
	}
	return unlocks, nil
}

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.Canceled:
		return fmt.Errorf("%w: %s", context.Canceled, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", context.DeadlineExceeded, st.Message())
	case codes.Unavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	}
	// The server sends the wrapped sentinel text; restore the sentinel so
	// errors.Is keeps working on this side.
	for _, r := range remoteErrors {
		if strings.HasPrefix(st.Message(), r.err.Error()) || strings.Contains(st.Message(), ": "+r.err.Error()) {
			return fmt.Errorf("%w: remote: %s", r.err, st.Message())
		}
	}
	return err
}
