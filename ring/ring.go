// Package ring maintains the consistent-hashing view of live peers used to
// place keys and compute replica sets.
package ring

import (
	"sort"

	"github.com/pixperk/dynamokv/membership"
	"github.com/pixperk/dynamokv/types"
)

// ReplicationFactor is the fixed number of replicas held per key.
const ReplicationFactor = 3

// peer is one ring slot: a live address and its precomputed hash code.
type peer struct {
	addr types.Address
	hash uint64
}

// Ring is the ordered, duplicate-free view of live peers sorted ascending
// by hash code.
type Ring struct {
	size     uint64 // ring modulus
	peers    []peer
	selfAddr types.Address
}

// New builds an empty ring for the given modulus and local address.
func New(ringSize uint64, self types.Address) *Ring {
	return &Ring{size: ringSize, selfAddr: self}
}

// Update replaces the ring if the new membership view's size differs from
// the current one. Returns true if the ring was actually replaced.
func (r *Ring) Update(members []membership.Member) bool {
	if len(members) == len(r.peers) {
		return false
	}
	peers := make([]peer, 0, len(members))
	seen := make(map[types.Address]bool, len(members))
	for _, m := range members {
		if seen[m.Addr] {
			continue // duplicate address in the membership view, skip
		}
		seen[m.Addr] = true
		peers = append(peers, peer{addr: m.Addr, hash: m.Addr.HashCode(r.size)})
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].hash < peers[j].hash })
	r.peers = peers
	return true
}

// Len reports the current ring size (number of live peers).
func (r *Ring) Len() int { return len(r.peers) }

// FindReplicas returns the ordered triple of peers responsible for key
// (PRIMARY, SECONDARY, TERTIARY). Returns nil if fewer than three peers
// are on the ring.
func (r *Ring) FindReplicas(key string) []types.Address {
	n := len(r.peers)
	if n < 3 {
		return nil
	}
	p := types.KeyHash(key, r.size)

	// if p <= ring[0].hash or p > ring[last].hash, wrap to the start
	if p <= r.peers[0].hash || p > r.peers[n-1].hash {
		return []types.Address{r.peers[0].addr, r.peers[1].addr, r.peers[2].addr}
	}

	// scan forward for the first index i>=1 with p <= ring[i].hash
	for i := 1; i < n; i++ {
		if p <= r.peers[i].hash {
			return []types.Address{
				r.peers[i].addr,
				r.peers[(i+1)%n].addr,
				r.peers[(i+2)%n].addr,
			}
		}
	}
	// unreachable: the p > ring[last].hash case above already handles the
	// tail, but fall back to the wrap case defensively.
	return []types.Address{r.peers[0].addr, r.peers[1].addr, r.peers[2].addr}
}

// trueMod is a non-negative modulus: Go's % can return a negative result
// for a negative dividend, which is wrong for wrapping ring index
// arithmetic.
func trueMod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// Neighbors are the peers that hold copies of this node's data, and whose
// data this node holds a copy of.
type Neighbors struct {
	HasMyReplicas  [2]types.Address // ring[i+1], ring[i+2]
	HaveReplicasOf [2]types.Address // ring[i-1], ring[i-2], true modulus
	Found          bool
}

// FindNeighbors locates self on the ring and fills hasMyReplicas /
// haveReplicasOf. Found is false if self isn't currently on the ring (can
// happen transiently right after a membership change).
func (r *Ring) FindNeighbors() Neighbors {
	n := len(r.peers)
	for i, p := range r.peers {
		if p.addr != r.selfAddr {
			continue
		}
		return Neighbors{
			HasMyReplicas:  [2]types.Address{r.peers[(i+1)%n].addr, r.peers[(i+2)%n].addr},
			HaveReplicasOf: [2]types.Address{r.peers[trueMod(i-1, n)].addr, r.peers[trueMod(i-2, n)].addr},
			Found:          true,
		}
	}
	return Neighbors{}
}
