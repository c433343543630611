// Package service defines the lifecycle contract auricd's long-running
// components share, so the daemon's startup/shutdown sequence can treat
// the peer manager, listener, pinger, exchangers, and RPC server as an
// interchangeable list rather than special-casing each one.
package service

// Service is anything auricd starts at boot and stops at shutdown. Start
// is expected to return once the service is listening/running, doing its
// ongoing work on its own goroutines; Stop must be safe to call exactly
// once and should cause those goroutines to exit.
type Service interface {
	Start() error
	Stop() error
}
