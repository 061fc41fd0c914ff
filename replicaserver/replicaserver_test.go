package replicaserver

import (
	"testing"

	"github.com/pixperk/dynamokv/logging"
	"github.com/pixperk/dynamokv/store"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/types"
	"github.com/pixperk/dynamokv/wire"
)

func setup() (*Server, *transport.SimNet, *logging.RecordingSink, types.Address, types.Address) {
	self := types.NewAddress(1, 5001)
	coord := types.NewAddress(2, 5002)
	net := transport.NewSimNet(0)
	sink := logging.NewRecordingSink()
	s := New(self, store.New(), net, sink)
	return s, net, sink, self, coord
}

func TestHandleCreateSuccessRepliesAndLogs(t *testing.T) {
	s, net, sink, self, coord := setup()

	s.HandleCreate(wire.Message{TxnID: 1, From: coord, Kind: types.CREATE, Key: "x", Value: "v", Replica: types.PRIMARY}, 10)

	if len(sink.Entries) != 1 || !sink.Entries[0].Success || sink.Entries[0].Coordinator {
		t.Fatalf("expected one replica-side success log, got %+v", sink.Entries)
	}

	msgs := net.Drain(coord)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(msgs))
	}
	reply, err := wire.Decode(msgs[0])
	if err != nil {
		t.Fatal(err)
	}
	if reply.Kind != types.REPLY || !reply.Success || reply.TxnID != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	_ = self
}

func TestHandleCreateExistingFails(t *testing.T) {
	s, net, sink, _, coord := setup()
	s.HandleCreate(wire.Message{TxnID: 1, From: coord, Kind: types.CREATE, Key: "x", Value: "v"}, 1)
	s.HandleCreate(wire.Message{TxnID: 2, From: coord, Kind: types.CREATE, Key: "x", Value: "v2"}, 2)

	if len(sink.Entries) != 2 || sink.Entries[1].Success {
		t.Fatalf("expected second create to log failure, got %+v", sink.Entries)
	}
	msgs := net.Drain(coord)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(msgs))
	}
	reply, _ := wire.Decode(msgs[1])
	if reply.Success {
		t.Fatal("expected second reply to report failure")
	}
}

func TestStabilizationCreateNeverLogsOrReplies(t *testing.T) {
	s, net, sink, _, coord := setup()
	s.HandleCreate(wire.Message{TxnID: types.StabilizationTxnID, From: coord, Kind: types.CREATE, Key: "x", Value: "v"}, 5)

	if len(sink.Entries) != 0 {
		t.Fatalf("expected no log entries for stabilization create, got %+v", sink.Entries)
	}
	if msgs := net.Drain(coord); len(msgs) != 0 {
		t.Fatalf("expected no reply for stabilization create, got %d", len(msgs))
	}

	entry, err := s.Store.Read("x")
	if err != nil || entry.Value != "v" {
		t.Fatal("expected stabilization create to still apply locally")
	}
}

func TestHandleReadMissingRepliesEmpty(t *testing.T) {
	s, net, sink, _, coord := setup()
	s.HandleRead(wire.Message{TxnID: 1, From: coord, Kind: types.READ, Key: "nope"})

	if len(sink.Entries) != 1 || sink.Entries[0].Success {
		t.Fatalf("expected replica read-fail log, got %+v", sink.Entries)
	}
	msgs := net.Drain(coord)
	reply, _ := wire.Decode(msgs[0])
	if reply.Kind != types.READREPLY || reply.Value != "" {
		t.Fatalf("expected empty READREPLY, got %+v", reply)
	}
}

func TestHandleUpdateMissingFails(t *testing.T) {
	s, net, sink, _, coord := setup()
	s.HandleUpdate(wire.Message{TxnID: 1, From: coord, Kind: types.UPDATE, Key: "nope", Value: "v"}, 1)

	if sink.Entries[0].Success {
		t.Fatal("expected update-of-missing to fail")
	}
	msgs := net.Drain(coord)
	reply, _ := wire.Decode(msgs[0])
	if reply.Success {
		t.Fatal("expected failure reply")
	}
}

func TestHandleDeleteExistingSucceeds(t *testing.T) {
	s, net, sink, _, coord := setup()
	_ = s.Store.Create("x", store.Entry{Value: "v"})
	s.HandleDelete(wire.Message{TxnID: 1, From: coord, Kind: types.DELETE, Key: "x"})

	if !sink.Entries[0].Success {
		t.Fatal("expected delete to succeed")
	}
	msgs := net.Drain(coord)
	reply, _ := wire.Decode(msgs[0])
	if !reply.Success {
		t.Fatal("expected success reply")
	}
}
