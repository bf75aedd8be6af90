// Copyright (C) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/incrementer/api"
	"github.com/ava-labs/incrementer/api/jsonrpc"
	"github.com/ava-labs/incrementer/server"
)

const (
	baseURL         = "/ext"
	metricsBase     = "metrics"
	shutdownTimeout = 10 * time.Second
)

func (s *Simulator) newServeCmd() *cobra.Command {
	var listenAddress string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulator over JSON-RPC until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(listenAddress) == 0 {
				listenAddress = s.cfg.ListenAddress
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listener, err := net.Listen("tcp", listenAddress)
			if err != nil {
				return err
			}
			return s.serve(ctx, listener)
		},
	}
	cmd.Flags().StringVar(&listenAddress, "listen", "", "address to listen on, overrides the config file")
	return cmd
}

// serve exposes the vm and its metrics on [listener] until [ctx] is done.
func (s *Simulator) serve(ctx context.Context, listener net.Listener) error {
	srv := server.New(baseURL, s.log, listener, s.cfg.HTTP, s.cfg.AllowedOrigins, shutdownTimeout)

	handler, err := jsonrpc.JSONRPCServerFactory{}.New(s.vm)
	if err != nil {
		return err
	}
	if err := srv.AddRoute(handler.Handler, api.Name, handler.Path); err != nil {
		return err
	}
	gatherer := prometheus.Gatherers{s.registry, s.dbRegistry}
	if err := srv.AddRoute(server.NewMetricsHandler(gatherer), metricsBase, ""); err != nil {
		return err
	}

	s.log.Info("serving",
		zap.Stringer("address", listener.Addr()),
		zap.String("rpc", baseURL+"/"+api.Name+handler.Path),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Dispatch)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown()
	})
	return g.Wait()
}
