// Package wire defines the peer-to-peer message set and the envelope that
// carries it. Every Message is a seria.Traversable; Envelope wraps one
// together with the sender's signature over it.
package wire
