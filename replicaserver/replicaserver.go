// Package replicaserver implements the four mutation-kind handlers: apply
// the local-store operation, log success/failure on the replica side, and
// reply to the coordinator. A CREATE carrying the stabilization sentinel
// transaction id is a background repair write: apply locally, never log,
// never reply.
package replicaserver

import (
	"github.com/pixperk/dynamokv/logging"
	"github.com/pixperk/dynamokv/store"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/types"
	"github.com/pixperk/dynamokv/wire"
)

// Server applies replica-side operations against a LocalStore and emits
// replies over Transport.
type Server struct {
	Self      types.Address
	Store     *store.LocalStore
	Transport transport.Transport
	Sink      logging.Sink
}

func New(self types.Address, s *store.LocalStore, tr transport.Transport, sink logging.Sink) *Server {
	return &Server{Self: self, Store: s, Transport: tr, Sink: sink}
}

func (s *Server) reply(to types.Address, txnID int64, success bool) {
	s.Transport.Send(s.Self, to, wire.Encode(wire.Message{
		TxnID: txnID, From: s.Self, Kind: types.REPLY, Success: success,
	}))
}

// HandleCreate applies CREATE. txnID == types.StabilizationTxnID is the
// background-repair sentinel: apply only, no log, no reply.
func (s *Server) HandleCreate(msg wire.Message, now int64) {
	err := s.Store.Create(msg.Key, store.Entry{Value: msg.Value, Timestamp: now, Role: msg.Replica})
	success := err == nil

	if msg.TxnID == types.StabilizationTxnID {
		return
	}
	if success {
		s.Sink.LogCreateSuccess(s.Self, false, msg.TxnID, msg.Key, msg.Value)
	} else {
		s.Sink.LogCreateFail(s.Self, false, msg.TxnID, msg.Key, msg.Value)
	}
	s.reply(msg.From, msg.TxnID, success)
}

// HandleRead applies READ, replying with READREPLY (empty value on
// failure).
func (s *Server) HandleRead(msg wire.Message) {
	entry, err := s.Store.Read(msg.Key)
	if err == nil {
		s.Sink.LogReadSuccess(s.Self, false, msg.TxnID, msg.Key, entry.Value)
	} else {
		s.Sink.LogReadFail(s.Self, false, msg.TxnID, msg.Key)
	}
	s.Transport.Send(s.Self, msg.From, wire.Encode(wire.Message{
		TxnID: msg.TxnID, From: s.Self, Kind: types.READREPLY, Key: msg.Key, Value: entry.Value,
	}))
}

// HandleUpdate applies UPDATE.
func (s *Server) HandleUpdate(msg wire.Message, now int64) {
	err := s.Store.Update(msg.Key, store.Entry{Value: msg.Value, Timestamp: now, Role: msg.Replica})
	success := err == nil
	if success {
		s.Sink.LogUpdateSuccess(s.Self, false, msg.TxnID, msg.Key, msg.Value)
	} else {
		s.Sink.LogUpdateFail(s.Self, false, msg.TxnID, msg.Key, msg.Value)
	}
	s.reply(msg.From, msg.TxnID, success)
}

// HandleDelete applies DELETE.
func (s *Server) HandleDelete(msg wire.Message) {
	err := s.Store.Delete(msg.Key)
	success := err == nil
	if success {
		s.Sink.LogDeleteSuccess(s.Self, false, msg.TxnID, msg.Key)
	} else {
		s.Sink.LogDeleteFail(s.Self, false, msg.TxnID, msg.Key)
	}
	s.reply(msg.From, msg.TxnID, success)
}
