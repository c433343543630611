package config

import (
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

type Config struct {
	LogLevel       string          `mapstructure:"log_level"`
	EnableProfiler bool            `mapstructure:"enable_profiler"`
	Heartbeat      HeartbeatConfig `mapstructure:"heartbeat"`
	P2P            P2PConfig       `mapstructure:"p2p"`
	RPC            RPCConfig       `mapstructure:"rpc"`
	Mining         MiningConfig    `mapstructure:"mining"`
	BanLists       []string        `mapstructure:"ban_lists"`
	Tuning         TuningConfig    `mapstructure:"tuning"`
}

// HeartbeatConfig configures periodic telemetry reporting of this node's
// moniker and peer ID to a remote stats collector.
type HeartbeatConfig struct {
	Moniker string `mapstructure:"moniker"`
	URL     string `mapstructure:"url"`
}

type P2PConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Magic    uint32   `mapstructure:"magic"`
	DNSSeeds []string `mapstructure:"dns_seeds"`
	// PrioritySeeds are dialed once at startup, before DNS seeds, and do
	// not suppress dialing of other discovered peers. After a disconnect
	// they are redialed only by the peer manager's periodic refill.
	PrioritySeeds []string `mapstructure:"priority_seeds"`
	// ExclusiveSeeds, when non-empty, are dialed at startup instead of
	// PrioritySeeds, and DNS seed lookup and peer exchange are skipped.
	// Inbound connections are not filtered against this list, and the
	// peer manager's periodic refill still dials stored peers.
	ExclusiveSeeds      []string `mapstructure:"exclusive_seeds"`
	MaxInboundPeers     int      `mapstructure:"max_inbound_peers"`
	MaxOutboundPeers    int      `mapstructure:"max_outbound_peers"`
	ConnectionTimeoutMS int      `mapstructure:"connection_timeout_ms"`
}

type RPCConfig struct {
	Host string `mapstructure:"host"`
	// Port serves the JSON-RPC wallet/miner dialect (get_info, get_height,
	// get_block_template, submit_block, get_transactions,
	// send_raw_transaction).
	Port int `mapstructure:"port"`
	// HealthPort serves the gRPC health-checking protocol
	// (grpc.health.v1.Health) so orchestrators can probe liveness without
	// speaking the node's own RPC dialect.
	HealthPort int `mapstructure:"health_port"`
}

type MiningConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Threads int    `mapstructure:"threads"`
}

type TuningConfig struct {
	Pinger        PingerConfig        `mapstructure:"pinger"`
	PeerExchanger PeerExchangerConfig `mapstructure:"peer_exchanger"`
	BlockSyncer   BlockSyncerConfig   `mapstructure:"block_syncer"`
	Mempool       MempoolConfig       `mapstructure:"mempool"`
	Heartbeat     HeartbeaterConfig   `mapstructure:"heartbeat"`
}

type PingerConfig struct {
	CheckIntervalMS int `mapstructure:"check_interval_ms"`
	PingIntervalMS  int `mapstructure:"ping_interval_ms"`
	TimeoutMS       int `mapstructure:"timeout_ms"`
}

type PeerExchangerConfig struct {
	SampleSize         int `mapstructure:"sample_size"`
	RequestIntervalMS  int `mapstructure:"request_interval_ms"`
	MaxSentPeers       int `mapstructure:"max_sent_peers"`
	MaxReceivedPeers   int `mapstructure:"max_received_peers"`
	MaxConcurrentDials int `mapstructure:"max_concurrent_dials"`
}

type BlockSyncerConfig struct {
	RequestTimeoutMS  int `mapstructure:"request_timeout_ms"`
	BatchSize         int `mapstructure:"batch_size"`
	MaxConcurrentPeer int `mapstructure:"max_concurrent_per_peer"`
}

type MempoolConfig struct {
	MaxTransactions int `mapstructure:"max_transactions"`
	ExpiryMS        int `mapstructure:"expiry_ms"`
}

type HeartbeaterConfig struct {
	IntervalMS int `mapstructure:"interval_ms"`
	TimeoutMS  int `mapstructure:"timeout_ms"`
}

func ReadConfig(r io.Reader) (*Config, error) {
	decoder := toml.NewDecoder(r)
	decoder.SetTagName("mapstructure")
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "error decoding config file")
	}
	return config, nil
}

func ConvertDuration(base int, unit time.Duration) time.Duration {
	return time.Duration(base) * unit
}
