package cli

// Flag names shared between auricd and auric-cli's root commands and
// the helpers in this package that read them back off a *cobra.Command.
const (
	FlagHome    = "home"
	FlagRPCHost = "rpc_host"
	FlagRPCPort = "rpc_port"
	FlagFormat  = "format"
)
