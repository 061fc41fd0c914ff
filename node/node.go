// Package node wires every component together behind a single per-tick
// entry point. Node.Tick refreshes membership, repairs the ring on churn,
// sweeps stale transactions, and drains inbound messages, in that order.
package node

import (
	"github.com/pixperk/dynamokv/config"
	"github.com/pixperk/dynamokv/coordinator"
	"github.com/pixperk/dynamokv/handler"
	"github.com/pixperk/dynamokv/logging"
	"github.com/pixperk/dynamokv/membership"
	"github.com/pixperk/dynamokv/replicaserver"
	"github.com/pixperk/dynamokv/ring"
	"github.com/pixperk/dynamokv/stabilizer"
	"github.com/pixperk/dynamokv/store"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/txn"
	"github.com/pixperk/dynamokv/types"
)

// Node is one participant, simultaneously coordinator and replica server.
// It owns no goroutines; Tick is the only entry point, and the caller (a
// test loop or cmd/kvnode's ticker) drives the clock.
type Node struct {
	Self       types.Address
	Config     config.Config
	Store      *store.LocalStore
	Ring       *ring.Ring
	Txns       *txn.Table
	Membership membership.Source
	Transport  transport.Transport
	Sink       logging.Sink

	Replica     *replicaserver.Server
	Handler     *handler.Handler
	Coordinator *coordinator.Coordinator

	antiEntropy stabilizer.AntiEntropy
}

// New assembles a Node from its collaborators and seats its ring from
// membership's current view. self must also appear in that view for the
// ring/stabilizer to locate it.
func New(self types.Address, cfg config.Config, ms membership.Source, tr transport.Transport, sink logging.Sink) *Node {
	s := store.New()
	r := ring.New(cfg.RingSize, self)
	r.Update(ms.CurrentMembers())
	tbl := txn.New()
	rs := replicaserver.New(self, s, tr, sink)
	h := handler.New(self, rs, tbl, tr, sink)
	c := coordinator.New(self, r, tbl, tr)

	return &Node{
		Self:        self,
		Config:      cfg,
		Store:       s,
		Ring:        r,
		Txns:        tbl,
		Membership:  ms,
		Transport:   tr,
		Sink:        sink,
		Replica:     rs,
		Handler:     h,
		Coordinator: c,
		antiEntropy: stabilizer.AntiEntropy{Self: self},
	}
}

// Tick advances the node by one logical step:
//  1. pull a fresh membership view; if the ring's size changed, reseat it
//     and, if the local store is non-empty, run the stabilizer;
//  2. scan the transaction table and expire stale entries;
//  3. drain the inbound message queue through the message handler.
func (n *Node) Tick(now int64) {
	members := n.Membership.CurrentMembers()
	if n.Ring.Update(members) && n.Store.Len() > 0 {
		stabilizer.Stabilize(n.Self, n.Ring, n.Store, n.Transport)
	}

	n.Handler.SweepTimeouts(now, n.Config.Timeout)
	n.Handler.Drain(now)
}

// AntiEntropy runs one pull-based repair pass against peer's store. Unlike
// Tick's push-based stabilization, this is not triggered automatically by
// a ring change — the caller decides the cadence (e.g. every K ticks) and
// supplies the peer directly, since a single-process cluster holds every
// node's store by reference.
func (n *Node) AntiEntropy(peerStore *store.LocalStore) []string {
	return n.antiEntropy.Sync(n.Store, peerStore)
}
