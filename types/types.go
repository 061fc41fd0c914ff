// Package types holds the shapes shared across every layer of the store:
// node identity, replica roles, and message kinds.
package types

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Address is a peer's 6-byte identity: a 4-byte id and a 2-byte port.
type Address struct {
	ID   [4]byte
	Port [2]byte
}

// NewAddress packs an id and a port into the fixed 6-byte address layout.
func NewAddress(id uint32, port uint16) Address {
	var a Address
	binary.BigEndian.PutUint32(a.ID[:], id)
	binary.BigEndian.PutUint16(a.Port[:], port)
	return a
}

func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", a.ID[0], a.ID[1], a.ID[2], a.ID[3], binary.BigEndian.Uint16(a.Port[:]))
}

// HashCode is the deterministic 64-bit hash of the address, reduced modulo
// ringSize. FNV-1a is used for the same reason torua's shard registry uses
// it for key->shard hashing: fast, dependency-free, good distribution.
func (a Address) HashCode(ringSize uint64) uint64 {
	h := fnv.New64a()
	h.Write(a.ID[:])
	h.Write(a.Port[:])
	return h.Sum64() % ringSize
}

// KeyHash hashes a string key the same way, for ring placement.
func KeyHash(key string, ringSize uint64) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64() % ringSize
}

// ReplicaRole tags how a node views its role for a key at write time.
type ReplicaRole int

const (
	PRIMARY ReplicaRole = iota
	SECONDARY
	TERTIARY
)

func (r ReplicaRole) String() string {
	switch r {
	case PRIMARY:
		return "PRIMARY"
	case SECONDARY:
		return "SECONDARY"
	case TERTIARY:
		return "TERTIARY"
	default:
		return "UNKNOWN"
	}
}

// MessageKind tags the inbound/outbound message variant.
type MessageKind int

const (
	CREATE MessageKind = iota
	READ
	UPDATE
	DELETE
	REPLY
	READREPLY
)

func (k MessageKind) String() string {
	switch k {
	case CREATE:
		return "CREATE"
	case READ:
		return "READ"
	case UPDATE:
		return "UPDATE"
	case DELETE:
		return "DELETE"
	case REPLY:
		return "REPLY"
	case READREPLY:
		return "READREPLY"
	default:
		return "UNKNOWN"
	}
}

// StabilizationTxnID is the sentinel transaction id for background CREATEs
// emitted by the stabilization protocol: applied locally, never logged,
// never replied to.
const StabilizationTxnID = -1
