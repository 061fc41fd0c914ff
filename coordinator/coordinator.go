// Package coordinator implements the client entry points: create, read,
// update, delete. Each allocates a transaction id, finds the replica set
// via the ring, fans out one tagged message per replica, and registers a
// fresh transaction record.
package coordinator

import (
	"sync/atomic"

	"github.com/pixperk/dynamokv/ring"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/txn"
	"github.com/pixperk/dynamokv/types"
	"github.com/pixperk/dynamokv/wire"
)

// txnCounter is process-wide: in a single-process cluster every node
// shares one counter, but each coordinator still sees unique ids, which is
// all uniqueness the protocol requires.
var txnCounter int64

func nextTxnID() int64 {
	return atomic.AddInt64(&txnCounter, 1)
}

// Coordinator is the client-facing API for one node.
type Coordinator struct {
	Self      types.Address
	Ring      *ring.Ring
	Txns      *txn.Table
	Transport transport.Transport
}

func New(self types.Address, r *ring.Ring, txns *txn.Table, tr transport.Transport) *Coordinator {
	return &Coordinator{Self: self, Ring: r, Txns: txns, Transport: tr}
}

func (c *Coordinator) send(to types.Address, msg wire.Message) {
	c.Transport.Send(c.Self, to, wire.Encode(msg))
}

// Create issues a CREATE to the replica set for key. Returns the assigned
// transaction id, or ok=false if fewer than 3 replicas are currently known
// — nothing is sent, nothing is registered.
func (c *Coordinator) Create(now int64, key, value string) (txnID int64, ok bool) {
	replicas := c.Ring.FindReplicas(key)
	if len(replicas) != ring.ReplicationFactor {
		return 0, false
	}
	id := nextTxnID()
	for i, peer := range replicas {
		c.send(peer, wire.Message{TxnID: id, From: c.Self, Kind: types.CREATE, Key: key, Value: value, Replica: types.ReplicaRole(i)})
	}
	c.Txns.Register(id, types.CREATE, now, key, value)
	return id, true
}

// Read issues a READ to the replica set for key. The replica tag is
// unused for READ.
func (c *Coordinator) Read(now int64, key string) (txnID int64, ok bool) {
	replicas := c.Ring.FindReplicas(key)
	if len(replicas) != ring.ReplicationFactor {
		return 0, false
	}
	id := nextTxnID()
	for _, peer := range replicas {
		c.send(peer, wire.Message{TxnID: id, From: c.Self, Kind: types.READ, Key: key})
	}
	c.Txns.Register(id, types.READ, now, key, "")
	return id, true
}

// Update issues an UPDATE to the replica set for key.
func (c *Coordinator) Update(now int64, key, value string) (txnID int64, ok bool) {
	replicas := c.Ring.FindReplicas(key)
	if len(replicas) != ring.ReplicationFactor {
		return 0, false
	}
	id := nextTxnID()
	for i, peer := range replicas {
		c.send(peer, wire.Message{TxnID: id, From: c.Self, Kind: types.UPDATE, Key: key, Value: value, Replica: types.ReplicaRole(i)})
	}
	c.Txns.Register(id, types.UPDATE, now, key, value)
	return id, true
}

// Delete issues a DELETE to the replica set for key. The replica tag is
// unused for DELETE.
func (c *Coordinator) Delete(now int64, key string) (txnID int64, ok bool) {
	replicas := c.Ring.FindReplicas(key)
	if len(replicas) != ring.ReplicationFactor {
		return 0, false
	}
	id := nextTxnID()
	for _, peer := range replicas {
		c.send(peer, wire.Message{TxnID: id, From: c.Self, Kind: types.DELETE, Key: key})
	}
	c.Txns.Register(id, types.DELETE, now, key, "")
	return id, true
}
