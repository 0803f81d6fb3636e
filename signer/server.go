package signer

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/variant"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

// Server exposes a Signer over the Signer gRPC service. Unlocks are
// checked against the envelope before they are returned.
type Server struct {
	UnimplementedSignerServer
	Signer Signer
	Logger *zap.Logger
}

func (s *Server) SignTransaction(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Signer == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing signer")
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var p prepared.PreparedTransactionData
	if err := json.Unmarshal(in.GetValue(), &p); err != nil {
		logger.Warn("rejected prepared transaction", zap.Error(err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	payload, err := Sign(ctx, s.Signer, &p)
	if err != nil {
		logger.Warn("signing failed", zap.Error(err))
		return nil, mapErr(err)
	}
	out, err := block.Unlocks.EncodeJSONList(payload.Unlocks)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	logger.Info("signed transaction", zap.Stringer("transaction_id", payload.ID()))
	return wrapperspb.Bytes(out), nil
}

// remoteErrors are the sentinels that keep their identity across the wire,
// in match order.
var remoteErrors = []struct {
	err  error
	code codes.Code
}{
	{prepared.ErrUnlockMismatch, codes.FailedPrecondition},
	{prepared.ErrAlreadySigned, codes.FailedPrecondition},
	{ErrKeyMismatch, codes.FailedPrecondition},
	{ErrMissingChain, codes.FailedPrecondition},
	{ErrUnsupportedOwner, codes.FailedPrecondition},
	{wallet.ErrCoinTypeMismatch, codes.FailedPrecondition},
	{prepared.ErrMissingMetadata, codes.InvalidArgument},
	{prepared.ErrEmptyInputs, codes.InvalidArgument},
	{prepared.ErrInputOrder, codes.InvalidArgument},
	{variant.ErrUnknownVariant, codes.InvalidArgument},
	{wallet.ErrInvalidPath, codes.InvalidArgument},
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	for _, r := range remoteErrors {
		if errors.Is(err, r.err) {
			return status.Error(r.code, err.Error())
		}
	}
	return status.Error(codes.Internal, err.Error())
}
