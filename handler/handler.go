// Package handler drains inbound messages each tick and dispatches by
// kind. CREATE/READ/UPDATE/DELETE delegate to replicaserver; REPLY and
// READREPLY evaluate quorum against the transaction table and emit
// coordinator-side log entries.
package handler

import (
	"github.com/pixperk/dynamokv/logging"
	"github.com/pixperk/dynamokv/replicaserver"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/txn"
	"github.com/pixperk/dynamokv/types"
	"github.com/pixperk/dynamokv/wire"
)

// Handler owns no state of its own beyond references to the collaborators
// it dispatches to; the ring, the replica server, and the transaction
// table each observe independently rather than through a shared graph.
type Handler struct {
	Self      types.Address
	Replica   *replicaserver.Server
	Txns      *txn.Table
	Transport transport.Transport
	Sink      logging.Sink
}

func New(self types.Address, replica *replicaserver.Server, txns *txn.Table, tr transport.Transport, sink logging.Sink) *Handler {
	return &Handler{Self: self, Replica: replica, Txns: txns, Transport: tr, Sink: sink}
}

// Drain pulls every message queued for self and dispatches it. Processing
// runs to completion per message — there are no suspension points within
// a handler.
func (h *Handler) Drain(now int64) {
	for _, payload := range h.Transport.Drain(h.Self) {
		msg, err := wire.Decode(payload)
		if err != nil {
			continue // malformed payload, dropped silently
		}
		h.Dispatch(msg, now)
	}
}

// Dispatch routes a single message by kind.
func (h *Handler) Dispatch(msg wire.Message, now int64) {
	switch msg.Kind {
	case types.CREATE:
		h.Replica.HandleCreate(msg, now)
	case types.READ:
		h.Replica.HandleRead(msg)
	case types.UPDATE:
		h.Replica.HandleUpdate(msg, now)
	case types.DELETE:
		h.Replica.HandleDelete(msg)
	case types.REPLY:
		h.onReply(msg)
	case types.READREPLY:
		h.onReadReply(msg)
	default:
		// unknown message kind, dropped silently
	}
}

func (h *Handler) onReply(msg wire.Message) {
	out, ok := h.Txns.OnReply(msg.TxnID, msg.Success)
	if !ok || !out.Resolved {
		return
	}
	h.logCoordinatorOutcome(msg.TxnID, out)
}

func (h *Handler) onReadReply(msg wire.Message) {
	out, ok := h.Txns.OnReadReply(msg.TxnID, msg.Value)
	if !ok || !out.Resolved {
		return
	}
	h.logCoordinatorOutcome(msg.TxnID, out)
}

// logCoordinatorOutcome emits the final, quorum-resolved coordinator-side
// log entry for a transaction.
func (h *Handler) logCoordinatorOutcome(txnID int64, out txn.Outcome) {
	r := out.Record
	switch r.Kind {
	case types.CREATE:
		if out.Success {
			h.Sink.LogCreateSuccess(h.Self, true, txnID, r.Key, r.Value)
		} else {
			h.Sink.LogCreateFail(h.Self, true, txnID, r.Key, r.Value)
		}
	case types.READ:
		if out.Success {
			h.Sink.LogReadSuccess(h.Self, true, txnID, r.Key, r.Value)
		} else {
			h.Sink.LogReadFail(h.Self, true, txnID, r.Key)
		}
	case types.UPDATE:
		if out.Success {
			h.Sink.LogUpdateSuccess(h.Self, true, txnID, r.Key, r.Value)
		} else {
			h.Sink.LogUpdateFail(h.Self, true, txnID, r.Key, r.Value)
		}
	case types.DELETE:
		if out.Success {
			h.Sink.LogDeleteSuccess(h.Self, true, txnID, r.Key)
		} else {
			h.Sink.LogDeleteFail(h.Self, true, txnID, r.Key)
		}
	}
}

// SweepTimeouts evicts stale transactions of any kind and logs each as a
// coordinator-side failure.
func (h *Handler) SweepTimeouts(now, timeout int64) {
	for _, t := range h.Txns.SweepTimeouts(now, timeout) {
		switch t.Record.Kind {
		case types.CREATE:
			h.Sink.LogCreateFail(h.Self, true, t.TxnID, t.Record.Key, t.Record.Value)
		case types.READ:
			h.Sink.LogReadFail(h.Self, true, t.TxnID, t.Record.Key)
		case types.UPDATE:
			h.Sink.LogUpdateFail(h.Self, true, t.TxnID, t.Record.Key, t.Record.Value)
		case types.DELETE:
			h.Sink.LogDeleteFail(h.Self, true, t.TxnID, t.Record.Key)
		}
	}
}
