package commands

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/bitfsorg/walletsdk-go/api"
	"github.com/bitfsorg/walletsdk-go/metrics"
	"github.com/bitfsorg/walletsdk-go/network"
	"github.com/bitfsorg/walletsdk-go/signer"
	"github.com/bitfsorg/walletsdk-go/store"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the remote signer (gRPC) and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, func(httpAddr, grpcAddr net.Addr) {
				cmd.Printf("http %s\ngrpc %s\n", httpAddr, grpcAddr)
			})
		},
	}
	cmd.Flags().String("listen", "", "HTTP API listen address")
	cmd.Flags().String("grpc", "", "remote signer listen address")
	return cmd
}

// serve runs both servers until ctx is done. ready is called once both
// listeners are bound.
func (a *app) serve(ctx context.Context, ready func(httpAddr, grpcAddr net.Addr)) error {
	w, err := a.openWallet()
	if err != nil {
		return err
	}
	st, err := store.OpenBoltStore(filepath.Join(a.cfg.DataDir, storeFileName))
	if err != nil {
		return err
	}
	defer st.Close()

	s := signer.NewObservedSigner(
		signer.NewMnemonicSigner(w, signer.WithLogger(a.logger.Named("signer"))),
		metrics.NewSigner("mnemonic"),
	)
	opts := []api.Option{
		api.WithLogger(a.logger.Named("api")),
		api.WithStore(st),
		api.WithMetrics(metrics.NewHTTP()),
	}
	if a.cfg.NodeURL != "" {
		client, err := a.node()
		if err != nil {
			return err
		}
		opts = append(opts, api.WithNode(network.NewObservedClient(client, metrics.NewNode(a.cfg.Network))))
	}

	httpLis, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		return err
	}
	grpcLis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		_ = httpLis.Close()
		return err
	}

	gs := grpc.NewServer()
	signer.RegisterSignerServer(gs, &signer.Server{Signer: s, Logger: a.logger.Named("grpc")})
	hs := &http.Server{
		Handler:           api.NewServer(s, a.network, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		if err := hs.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		if err := gs.Serve(grpcLis); err != nil {
			errc <- err
		}
	}()
	a.logger.Info("serving",
		zap.String("network", a.network.Name),
		zap.Stringer("http", httpLis.Addr()),
		zap.Stringer("grpc", grpcLis.Addr()),
	)
	if ready != nil {
		ready(httpLis.Addr(), grpcLis.Addr())
	}

	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if herr := hs.Shutdown(shutdownCtx); herr != nil {
		a.logger.Error("http shutdown", zap.Error(herr))
	}
	gs.GracefulStop()
	return err
}
