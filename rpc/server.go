// Package rpc exposes auricd's node functionality to wallets, miners,
// and other daemons over three surfaces: a JSON-RPC 2.0 endpoint for
// wallet/miner-facing methods, a binary HTTP endpoint for daemon-to-daemon
// bulk block transfer, and a gRPC health service for orchestration
// probes (load balancers, process supervisors).
package rpc

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"auric/chainfile"
	"auric/crypto"
	"auric/log"
	"auric/p2p"
	"auric/service"
	"auric/util"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Opts configures a Server. Every dependency is injected rather than
// constructed internally, the way the rest of auricd's long-running
// components (p2p.NewPeerManager, protocol.NewBlockSyncer) take their
// collaborators as an Opts struct rather than reaching for globals.
type Opts struct {
	PeerID      crypto.Hash
	Mux         *p2p.PeerMuxer
	PeerManager p2p.PeerManager
	DB          *leveldb.DB
	ChainFile   *chainfile.ChainFile
	// ChainLocker must be the same instance given to protocol.NewBlockSyncer
	// so SubmitBlock can't race a peer-synced append for the same height.
	ChainLocker util.MultiLocker

	Host       string
	Port       int
	HealthPort int
}

// Server bundles the JSON-RPC/binary HTTP listener and the gRPC health
// listener into a single service.Service, so cmd/auricd can start and
// stop it the same way it starts and stops the peer manager or the
// block syncer.
type Server struct {
	opts Opts
	lgr  log.Logger

	httpSrv   *http.Server
	grpcSrv   *grpc.Server
	healthSrv *health.Server
}

var _ service.Service = (*Server)(nil)

func NewServer(opts *Opts) *Server {
	return &Server{
		opts: *opts,
		lgr:  log.WithModule("rpc-server"),
	}
}

func (s *Server) Start() error {
	m := newMethods(&s.opts)
	dispatcher := newJSONRPCDispatcher(m)

	mux := http.NewServeMux()
	mux.HandleFunc("/json_rpc", dispatcher.ServeHTTP)
	mux.HandleFunc("/getblocks_fast.bin", newFastSyncHandler(&s.opts).ServeHTTP)

	httpAddr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return errors.Wrap(err, "error binding rpc listener")
	}
	s.httpSrv = &http.Server{
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		if err := s.httpSrv.Serve(httpLis); err != nil && err != http.ErrServerClosed {
			s.lgr.Error("rpc http server exited", "err", err)
		}
	}()
	s.lgr.Info("rpc server listening", "addr", httpAddr)

	if s.opts.HealthPort > 0 {
		healthAddr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.HealthPort))
		grpcLis, err := net.Listen("tcp", healthAddr)
		if err != nil {
			return errors.Wrap(err, "error binding health listener")
		}
		s.grpcSrv = grpc.NewServer()
		s.healthSrv = health.NewServer()
		healthpb.RegisterHealthServer(s.grpcSrv, s.healthSrv)
		s.healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		go func() {
			if err := s.grpcSrv.Serve(grpcLis); err != nil {
				s.lgr.Error("health server exited", "err", err)
			}
		}()
		s.lgr.Info("health server listening", "addr", healthAddr)
	}

	return nil
}

func (s *Server) Stop() error {
	if s.healthSrv != nil {
		s.healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	}
	if s.grpcSrv != nil {
		s.grpcSrv.GracefulStop()
	}
	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "error shutting down rpc http server")
		}
	}
	return nil
}
