// Package transport delivers opaque byte buffers between nodes. Transport
// is the interface the rest of the store consumes; SimNet is an in-memory,
// best-effort, unordered, lossy implementation for the demo binary and
// tests.
package transport

import (
	"math/rand"
	"sync"

	"github.com/pixperk/dynamokv/types"
)

// Transport is the wire contract: Send is best-effort, unordered, and may
// lose the message; Drain returns and clears everything that has arrived
// for self since the last call.
type Transport interface {
	Send(from, to types.Address, payload []byte)
	Drain(self types.Address) [][]byte
}

// SimNet is a single-process simulated network shared by every node in a
// test or demo run. Each node's inbound queue is independent; Send never
// blocks and silently drops the payload if dropRate fires.
type SimNet struct {
	mu       sync.Mutex
	inboxes  map[string][][]byte
	dropRate float64
}

// NewSimNet builds a network with the given drop probability in [0,1).
// A dropRate of 0 never loses a message.
func NewSimNet(dropRate float64) *SimNet {
	return &SimNet{
		inboxes:  make(map[string][][]byte),
		dropRate: dropRate,
	}
}

func (n *SimNet) Send(from, to types.Address, payload []byte) {
	if n.dropRate > 0 && rand.Float64() < n.dropRate {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	k := to.String()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	n.inboxes[k] = append(n.inboxes[k], buf)
}

func (n *SimNet) Drain(self types.Address) [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	k := self.String()
	msgs := n.inboxes[k]
	delete(n.inboxes, k)
	return msgs
}
