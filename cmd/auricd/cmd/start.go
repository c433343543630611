package cmd

import (
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"auric/chainfile"
	"auric/cli"
	"auric/config"
	"auric/core"
	"auric/crypto"
	"auric/log"
	"auric/p2p"
	"auric/protocol"
	"auric/rpc"
	"auric/service"
	"auric/store"
	"auric/util"
	"auric/version"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/syndtr/goleveldb/leveldb"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the daemon.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadConfigFile(configuredHomeDir)
		if err != nil {
			return errors.Wrap(err, "error reading config file")
		}

		logLevel, err := log.NewLevel(cfg.LogLevel)
		if err != nil {
			return errors.Wrap(err, "error parsing log level")
		}
		log.SetLevel(logLevel)
		lgr := log.WithModule("main")

		lgr.Info("starting auricd", "git_commit", version.GitCommit, "git_tag", version.GitTag)
		lgr.Info("opening home directory", "path", configuredHomeDir)

		unlock, err := acquireHomeDirLock(configuredHomeDir)
		if err != nil {
			return err
		}
		defer unlock()

		signer, err := cli.GetSigner(configuredHomeDir)
		if err != nil {
			return errors.Wrap(err, "error opening home directory")
		}

		dbPath := config.ExpandDBPath(configuredHomeDir)
		lgr.Info("opening db", "path", dbPath)
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}

		chainPath := config.ExpandChainPath(configuredHomeDir)
		lgr.Info("opening chain file", "path", chainPath)
		cf, err := chainfile.Open(chainPath)
		if err != nil {
			return err
		}

		priority, err := p2p.ParseSeedPeers(cfg.P2P.PrioritySeeds)
		if err != nil {
			return errors.Wrap(err, "error parsing priority peers")
		}
		exclusive, err := p2p.ParseSeedPeers(cfg.P2P.ExclusiveSeeds)
		if err != nil {
			return errors.Wrap(err, "error parsing exclusive peers")
		}

		var dnsSeeds []string
		if len(exclusive) == 0 {
			for _, domain := range cfg.P2P.DNSSeeds {
				lgr.Info("looking up DNS seeds", "domain", domain)
				seeds, err := p2p.ResolveDNSSeeds(domain)
				if err != nil {
					lgr.Error("error resolving DNS seeds", "domain", domain, "err", err)
					continue
				}
				dnsSeeds = append(dnsSeeds, seeds...)
			}
		}

		if len(cfg.BanLists) > 0 {
			lgr.Info("ingesting ban lists")
			if err := protocol.IngestBanLists(db, cfg.BanLists); err != nil {
				return errors.Wrap(err, "failed to ingest ban lists")
			}
		}

		magic := cfg.P2P.Magic
		if magic == 0 {
			magic = p2p.MainnetMagic
		}

		var services []service.Service
		mux := p2p.NewPeerMuxer(magic, signer)

		dialSeeds := priority
		if len(exclusive) > 0 {
			dialSeeds = exclusive
		}

		pm := p2p.NewPeerManager(&p2p.PeerManagerOpts{
			Mux:         mux,
			DB:          db,
			SeedPeers:   dialSeeds,
			Signer:      signer,
			ListenHost:  cfg.P2P.Host,
			MaxInbound:  cfg.P2P.MaxInboundPeers,
			MaxOutbound: cfg.P2P.MaxOutboundPeers,
			Height:      func() uint64 { height, _, _ := store.GetChainTip(db); return height },
			Magic:       magic,
		})
		services = append(services, pm)

		if cfg.P2P.Host != "" {
			services = append(services, p2p.NewListener(cfg.P2P.Host, pm))
		}

		ownPeerID := crypto.HashPub(signer.Pub())

		// chainLocker is shared by the block syncer and the RPC server so a
		// peer-synced block and a locally submitted block can never both
		// read the same chain tip and append at the same height.
		chainLocker := util.NewMultiLocker()

		pinger := protocol.NewPinger(mux)
		pinger.CheckInterval = config.ConvertDuration(cfg.Tuning.Pinger.CheckIntervalMS, time.Millisecond)
		pinger.PingInterval = config.ConvertDuration(cfg.Tuning.Pinger.PingIntervalMS, time.Millisecond)
		pinger.Timeout = config.ConvertDuration(cfg.Tuning.Pinger.TimeoutMS, time.Millisecond)

		blockSyncer := protocol.NewBlockSyncer(mux, db, cf, chainLocker, applyBlock(db, cf))
		blockSyncer.RequestTimeout = config.ConvertDuration(cfg.Tuning.BlockSyncer.RequestTimeoutMS, time.Millisecond)
		blockSyncer.BatchSize = cfg.Tuning.BlockSyncer.BatchSize
		blockSyncer.MaxConcurrentPeer = cfg.Tuning.BlockSyncer.MaxConcurrentPeer

		rpcServer := rpc.NewServer(&rpc.Opts{
			PeerID:      ownPeerID,
			Mux:         mux,
			PeerManager: pm,
			DB:          db,
			ChainFile:   cf,
			ChainLocker: chainLocker,
			Host:        cfg.RPC.Host,
			Port:        cfg.RPC.Port,
			HealthPort:  cfg.RPC.HealthPort,
		})

		services = append(services, pinger, blockSyncer, rpcServer)

		if len(exclusive) == 0 {
			peerExchanger := protocol.NewPeerExchanger(pm, mux, db)
			peerExchanger.SampleSize = cfg.Tuning.PeerExchanger.SampleSize
			peerExchanger.RequestInterval = config.ConvertDuration(cfg.Tuning.PeerExchanger.RequestIntervalMS, time.Millisecond)
			peerExchanger.MaxSentPeers = cfg.Tuning.PeerExchanger.MaxSentPeers
			peerExchanger.MaxReceivedPeers = cfg.Tuning.PeerExchanger.MaxReceivedPeers
			services = append(services, peerExchanger)
		} else {
			lgr.Info("exclusive peers configured, disabling peer exchange")
		}

		if cfg.Heartbeat.URL != "" {
			hb := protocol.NewHeartbeater(cfg.Heartbeat.URL, cfg.Heartbeat.Moniker, ownPeerID)
			hb.Interval = config.ConvertDuration(cfg.Tuning.Heartbeat.IntervalMS, time.Millisecond)
			hb.Timeout = config.ConvertDuration(cfg.Tuning.Heartbeat.TimeoutMS, time.Millisecond)
			services = append(services, hb)
		}

		lgr.Info("starting services")
		for _, s := range services {
			go func(s service.Service) {
				if err := s.Start(); err != nil {
					lgr.Error("failed to start service", "err", err)
				}
			}(s)
		}

		if cfg.EnableProfiler {
			lgr.Info("starting profiler", "port", 6060)
			runtime.SetBlockProfileRate(1)
			runtime.SetMutexProfileFraction(1)
			go func() {
				err := http.ListenAndServe("localhost:6060", nil)
				lgr.Error("error starting profiler", "err", err)
			}()
		}

		lgr.Info("dialing seed peers")
		for _, seed := range dialSeeds {
			if err := pm.DialPeer(seed.ID, seed.IP, true); err != nil {
				lgr.Warn("error dialing seed peer", "err", err)
			}
		}
		if len(exclusive) == 0 {
			for _, seed := range dnsSeeds {
				if err := pm.DialPeer(crypto.ZeroHash, seed, false); err != nil {
					lgr.Warn("error dialing DNS seed peer", "err", err)
				}
			}
		}

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		sig := <-sigs
		lgr.Info("shutting down", "signal", sig)

		for _, s := range services {
			if err := s.Stop(); err != nil {
				lgr.Error("error stopping service", "err", err)
			}
		}
		if err := cf.Close(); err != nil {
			lgr.Error("error closing chain file", "err", err)
		}
		if err := db.Close(); err != nil {
			lgr.Error("error closing db", "err", err)
		}
		return nil
	},
}

// applyBlock adapts chainfile/store's append-and-index sequence into the
// ApplyBlockFunc the block syncer calls for every block a peer hands it,
// the same append-then-index pair rpc.SubmitBlock performs for locally
// mined blocks.
func applyBlock(db *leveldb.DB, cf *chainfile.ChainFile) protocol.ApplyBlockFunc {
	return func(block *core.Block) error {
		height, ok, err := store.GetChainTip(db)
		if err != nil {
			return err
		}
		nextHeight := uint64(0)
		if ok {
			nextHeight = height + 1
		}

		id, err := block.ID()
		if err != nil {
			return errors.Wrap(err, "error hashing block")
		}

		rec, err := cf.AppendBlock(nextHeight, block)
		if err != nil {
			return errors.Wrap(err, "error appending block")
		}

		return store.WithTx(db, func(tx *leveldb.Transaction) error {
			return store.SetBlockIndexEntryTx(tx, &store.BlockIndexEntry{
				Height:     nextHeight,
				ID:         id,
				PrevID:     block.Header.PrevID,
				Timestamp:  time.Unix(int64(block.Header.Timestamp), 0),
				FileOffset: rec.Offset,
				FileLength: rec.Length,
				ReceivedAt: time.Now(),
			})
		})
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
