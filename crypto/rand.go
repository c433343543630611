package crypto

import (
	"crypto/rand"
	"encoding/binary"
)

func Rand32() [32]byte {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return buf
}

// RandUint64 returns a cryptographically random uint64, used as the
// handshake nonce that the remote side echoes in its HandshakeAck.
func RandUint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(buf[:])
}
