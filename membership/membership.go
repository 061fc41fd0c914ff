// Package membership publishes the current set of live peers. Source is
// the interface the node consumes; GossipList is a heartbeat-gossip
// implementation of it, giving the demo and tests a real collaborator to
// drive.
package membership

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pixperk/dynamokv/types"
)

// Member is one entry in a membership snapshot.
type Member struct {
	Addr types.Address
}

// Source publishes the current set of live peers. The node polls this once
// per tick; it never blocks.
type Source interface {
	CurrentMembers() []Member
}

// entry is the gossip-local bookkeeping for one peer.
type entry struct {
	addr      types.Address
	heartbeat uint64
	lastSeen  time.Time
}

// GossipList is a thread-safe heartbeat-gossip membership list. Each node
// owns one and merges it with a random peer's view once per gossip round.
type GossipList struct {
	mu      sync.RWMutex
	members map[string]*entry
	selfKey string
	tFail   time.Duration
}

func key(a types.Address) string { return a.String() }

// NewGossipList creates a membership list seeded with the local node.
func NewGossipList(self types.Address, tFail time.Duration) *GossipList {
	g := &GossipList{
		members: make(map[string]*entry),
		selfKey: key(self),
		tFail:   tFail,
	}
	g.members[g.selfKey] = &entry{addr: self, heartbeat: 0, lastSeen: time.Now()}
	return g
}

// AddSeed adds a peer assumed alive initially; gossip will correct it.
func (g *GossipList) AddSeed(addr types.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := key(addr)
	if _, exists := g.members[k]; !exists {
		g.members[k] = &entry{addr: addr, heartbeat: 0, lastSeen: time.Now()}
	}
}

// Tick increments the local node's own heartbeat. Call once per gossip round.
func (g *GossipList) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()
	self := g.members[g.selfKey]
	self.heartbeat++
	self.lastSeen = time.Now()
}

// RemoteEntry is what peers exchange during a gossip round.
type RemoteEntry struct {
	Addr      types.Address
	Heartbeat uint64
}

// Entries snapshots the local view for sending to a peer.
func (g *GossipList) Entries() []RemoteEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]RemoteEntry, 0, len(g.members))
	for _, e := range g.members {
		out = append(out, RemoteEntry{Addr: e.addr, Heartbeat: e.heartbeat})
	}
	return out
}

// Merge integrates a remote peer's view: higher heartbeats win, new nodes
// are added, self is never overwritten by a remote claim.
func (g *GossipList) Merge(remote []RemoteEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	for _, r := range remote {
		k := key(r.Addr)
		if k == g.selfKey {
			continue
		}
		local, exists := g.members[k]
		if !exists {
			g.members[k] = &entry{addr: r.Addr, heartbeat: r.Heartbeat, lastSeen: now}
		} else if r.Heartbeat > local.heartbeat {
			local.heartbeat = r.Heartbeat
			local.lastSeen = now
		}
	}
}

// IsAlive reports whether a node is considered alive (seen inside tFail).
func (g *GossipList) IsAlive(addr types.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, exists := g.members[key(addr)]
	if !exists {
		return false
	}
	return time.Since(e.lastSeen) < g.tFail
}

// RandomPeer picks a random peer (not self), alive or not, for gossip fan-out.
func (g *GossipList) RandomPeer() (types.Address, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	peers := make([]types.Address, 0, len(g.members)-1)
	for k, e := range g.members {
		if k == g.selfKey {
			continue
		}
		peers = append(peers, e.addr)
	}
	if len(peers) == 0 {
		return types.Address{}, false
	}
	return peers[rand.Intn(len(peers))], true
}

// CurrentMembers implements Source: every peer currently considered alive,
// including self.
func (g *GossipList) CurrentMembers() []Member {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Member, 0, len(g.members))
	now := time.Now()
	for k, e := range g.members {
		if k == g.selfKey || now.Sub(e.lastSeen) < g.tFail {
			out = append(out, Member{Addr: e.addr})
		}
	}
	return out
}

// Static is a fixed-membership Source for tests that don't need gossip
// convergence, only a deterministic member list.
type Static struct {
	Members []Member
}

func (s Static) CurrentMembers() []Member { return s.Members }
