package client

import (
	"testing"

	"github.com/pixperk/dynamokv/config"
	"github.com/pixperk/dynamokv/logging"
	"github.com/pixperk/dynamokv/membership"
	"github.com/pixperk/dynamokv/node"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/types"
)

func threeNodeCluster(sink *logging.RecordingSink) (map[types.Address]*node.Node, []types.Address) {
	as := []types.Address{
		types.NewAddress(1, 5001),
		types.NewAddress(2, 5002),
		types.NewAddress(3, 5003),
	}
	members := make([]membership.Member, len(as))
	for i, a := range as {
		members[i] = membership.Member{Addr: a}
	}
	net := transport.NewSimNet(0)
	nodes := make(map[types.Address]*node.Node, len(as))
	for _, a := range as {
		nodes[a] = node.New(a, config.Default(), &membership.Static{Members: members}, net, sink)
	}
	return nodes, as
}

func TestClientCreateThenRead(t *testing.T) {
	sink := logging.NewRecordingSink()
	nodes, as := threeNodeCluster(sink)
	self := as[0]

	c := New(nodes[self], sink)
	c.Advance = func(now int64) {
		for _, a := range as {
			nodes[a].Tick(now)
		}
	}

	ok, err := c.Create(1, "x", "1", 5)
	if err != nil || !ok {
		t.Fatalf("expected create to succeed, got ok=%v err=%v", ok, err)
	}

	value, ok, err := c.Read(10, "x", 5)
	if err != nil || !ok || value != "1" {
		t.Fatalf("expected read success with value 1, got value=%q ok=%v err=%v", value, ok, err)
	}
}

func TestClientReadTimesOutWithoutQuorum(t *testing.T) {
	sink := logging.NewRecordingSink()
	nodes, as := threeNodeCluster(sink)
	self := as[0]

	c := New(nodes[self], sink)
	// only advance self: the other two replicas never apply/reply, so
	// quorum can never be reached within the tick budget.
	c.Advance = nodes[self].Tick

	_, _, err := c.Read(1, "nope", 3)
	if err != ErrNoOutcome {
		t.Fatalf("expected ErrNoOutcome, got %v", err)
	}
}
