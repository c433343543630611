package config

import (
	"bytes"
	"io"
	"os"
	"path"
	"text/template"

	"auric/log"

	"github.com/pkg/errors"
)

var DefaultConfig = Config{
	BanLists:       []string{},
	LogLevel:       log.LevelInfo.String(),
	EnableProfiler: false,
	Heartbeat: HeartbeatConfig{
		Moniker: "",
		URL:     "https://stats.auric.network/heartbeat",
	},
	P2P: P2PConfig{
		Host:  "0.0.0.0",
		Port:  17767,
		Magic: 0x41555249, // "AURI"
		DNSSeeds: []string{
			"seeds.auric.network",
		},
		PrioritySeeds:       []string{},
		ExclusiveSeeds:      []string{},
		MaxInboundPeers:     117,
		MaxOutboundPeers:    8,
		ConnectionTimeoutMS: 5000,
	},
	RPC: RPCConfig{
		Host:       "127.0.0.1",
		Port:       17768,
		HealthPort: 17769,
	},
	Mining: MiningConfig{
		Enabled: false,
		Address: "",
		Threads: 1,
	},
	Tuning: TuningConfig{
		Pinger: PingerConfig{
			CheckIntervalMS: 1000,
			PingIntervalMS:  5000,
			TimeoutMS:       30000,
		},
		PeerExchanger: PeerExchangerConfig{
			SampleSize:         12,
			RequestIntervalMS:  60 * 60 * 1000,
			MaxSentPeers:       255,
			MaxReceivedPeers:   255,
			MaxConcurrentDials: 2,
		},
		BlockSyncer: BlockSyncerConfig{
			RequestTimeoutMS:  15000,
			BatchSize:         100,
			MaxConcurrentPeer: 2,
		},
		Mempool: MempoolConfig{
			MaxTransactions: 50000,
			ExpiryMS:        72 * 60 * 60 * 1000,
		},
		Heartbeat: HeartbeaterConfig{
			IntervalMS: 30000,
			TimeoutMS:  10000,
		},
	},
}

const defaultConfigTemplateText = `# auricd Config File

# List of ban list URLs.
ban_lists = []

# Enables pprof profiling.
enable_profiler = {{.EnableProfiler}}

# Sets the log level. Can be one of the following values:
# - error
# - warn
# - info
# - debug
# - trace
log_level = "{{.LogLevel}}"

# Configures heartbeating, which announces this
# node's moniker and peer ID to the provided URL.
[heartbeat]
  # Sets the node's heartbeat moniker.
  moniker = "{{.Heartbeat.Moniker}}"
  # Sets the URL the node will heartbeat to.
  url = "{{.Heartbeat.URL}}"

# Mining settings. auricd has no built-in miner: these values are parsed
# but not read by any component.
[mining]
  # Mining on/off flag; not read.
  enabled = {{.Mining.Enabled}}
  # Reward address; not read.
  address = "{{.Mining.Address}}"
  # Worker thread count; not read.
  threads = {{.Mining.Threads}}

# Configures the behavior of this node's peer-to-peer
# connections.
[p2p]
  # Not read: outbound dials use a fixed 2-second timeout and
  # handshakes use fixed timeouts of their own.
  connection_timeout_ms = {{.P2P.ConnectionTimeoutMS}}
  # Sets the set of domain names to query for seed nodes.
  # A records belonging to nodes in this list will be
  # connected to during node startup.
  dns_seeds = ["{{index .P2P.DNSSeeds 0}}"]
  # Sets a list of peers that, when present, are dialed at startup in
  # place of priority_seeds, with DNS seed lookup and peer exchange
  # turned off. Inbound connections are not restricted to this list, and
  # the periodic refill still dials peers stored in the database. Items
  # should be formatted as <peer-id>@<ip>:<port>.
  exclusive_seeds = []
  # Sets the IP this node should listen on. Should be set to 0.0.0.0
  # for all Internet-accessible nodes.
  host = "{{.P2P.Host}}"
  # Sets the magic value that prefixes every message envelope on this
  # network. Peers advertising a different magic are rejected.
  magic = {{.P2P.Magic}}
  # Sets the maximum number of inbound peers this node will handle. All
  # additional inbound peers will be rejected once this number is reached.
  # The default of 117 was chosen to match Bitcoin.
  max_inbound_peers = {{.P2P.MaxInboundPeers}}
  # Sets the maximum number of outbound peers this node will handle. The node
  # will not connect to any additional peers once this number is reached. The
  # default of 8 was chosen to match Bitcoin.
  max_outbound_peers = {{.P2P.MaxOutboundPeers}}
  # Not read: auricd always listens for and dials peers on port 9097.
  port = {{.P2P.Port}}
  # Sets a list of priority seed peers, dialed once at startup before DNS
  # seeds. After a disconnect they are redialed only by the periodic
  # refill, like any other stored peer. Ignored when exclusive_seeds is
  # set. Items should be formatted as <peer-id>@<ip>:<port>.
  priority_seeds = []

# Configures the behavior of this node's RPC servers.
[rpc]
  # Sets the port this node should serve the gRPC health-checking
  # protocol on.
  health_port = {{.RPC.HealthPort}}
  # Sets the IP this node should listen for RPC requests on.
  # For the most part, this should be set to 127.0.0.1. Exposing
  # auricd's RPC port to the public internet is not safe.
  host = "{{.RPC.Host}}"
  # Sets the port this node should listen for JSON-RPC requests on.
  port = {{.RPC.Port}}

# Configures various internal tuning parameters. Unless directed otherwise
# or you know what you are doing, these values should be left as their
# defaults.
[tuning]

  # Configures how often auricd will request new blocks from peers
  # while catching up to the chain tip.
  [tuning.block_syncer]
    # Sets the number of blocks requested per batch.
    batch_size = {{.Tuning.BlockSyncer.BatchSize}}
    # Sets how many in-flight batch requests are allowed at once,
    # across all peers.
    max_concurrent_per_peer = {{.Tuning.BlockSyncer.MaxConcurrentPeer}}
    # Sets how long auricd will wait for a peer to respond to a block
    # batch request before trying another peer.
    request_timeout_ms = {{.Tuning.BlockSyncer.RequestTimeoutMS}}

  # Configures how often auricd will perform heartbeats and
  # when to time out heartbeat requests.
  [tuning.heartbeat]
    interval_ms = {{.Tuning.Heartbeat.IntervalMS}}
    timeout_ms = {{.Tuning.Heartbeat.TimeoutMS}}

  # Mempool settings. These values are parsed but not read: the mempool
  # neither expires unconfirmed transactions nor caps their number.
  [tuning.mempool]
    # Transaction expiry; not read.
    expiry_ms = {{.Tuning.Mempool.ExpiryMS}}
    # Transaction cap; not read.
    max_transactions = {{.Tuning.Mempool.MaxTransactions}}

  # Configures how auricd exchanges peers with the rest of the network.
  [tuning.peer_exchanger]
    # Not read: the peer exchanger always uses the built-in default of
    # 2 concurrent dials for exchanged peers.
    max_concurrent_dials = {{.Tuning.PeerExchanger.MaxConcurrentDials}}
    # Sets the maximum number of peers auricd will process after
    # receiving exchanged peers.
    max_received_peers = {{.Tuning.PeerExchanger.MaxReceivedPeers}}
    # Sets the maximum number of peers auricd will send after receiving a
    # request for peers.
    max_sent_peers = {{.Tuning.PeerExchanger.MaxSentPeers}}
    # Sets how often auricd will request new peers.
    request_interval_ms = {{.Tuning.PeerExchanger.RequestIntervalMS}}
    # Sets how many peers auricd will request new peers from during each
    # peer exchange operation.
    sample_size = {{.Tuning.PeerExchanger.SampleSize}}

  # Configures how auricd pings connected peers to detect dead
  # connections.
  [tuning.pinger]
    # Sets how often the liveness of each peer is checked.
    check_interval_ms = {{.Tuning.Pinger.CheckIntervalMS}}
    # Sets how often a ping is sent to each peer.
    ping_interval_ms = {{.Tuning.Pinger.PingIntervalMS}}
    # Sets how long auricd will wait without receiving any message from
    # a peer before disconnecting it.
    timeout_ms = {{.Tuning.Pinger.TimeoutMS}}
`

var defaultConfigTemplate *template.Template

func GenerateDefaultConfigFile() []byte {
	buf := new(bytes.Buffer)
	if err := defaultConfigTemplate.Execute(buf, DefaultConfig); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func ReadConfigFile(homeDir string) (*Config, error) {
	f, err := os.OpenFile(path.Join(homeDir, "config.toml"), os.O_RDONLY, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "error opening config file for reading")
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	return cfg, nil
}

func WriteDefaultConfigFile(homeDir string) error {
	f, err := os.OpenFile(path.Join(homeDir, "config.toml"), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return errors.Wrap(err, "error opening config file for writing")
	}
	defer f.Close()
	rd := bytes.NewReader(GenerateDefaultConfigFile())
	if _, err := io.Copy(f, rd); err != nil {
		return errors.Wrap(err, "error writing config file")
	}
	return nil
}

func init() {
	tmpl := template.New("defaultConfig")
	t, err := tmpl.Parse(defaultConfigTemplateText)
	if err != nil {
		panic(err)
	}
	defaultConfigTemplate = t
}
