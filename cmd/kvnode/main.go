// Command kvnode boots an in-memory three-node ring, issues a handful of
// create/read/update operations against it through gossip-driven
// membership, and prints each operation's outcome as it goes.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pixperk/dynamokv/client"
	"github.com/pixperk/dynamokv/clock"
	"github.com/pixperk/dynamokv/config"
	"github.com/pixperk/dynamokv/logging"
	"github.com/pixperk/dynamokv/membership"
	"github.com/pixperk/dynamokv/node"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/types"
)

const numNodes = 3

// tFail is generous: this demo's gossip rounds are driven by the tick loop
// below, not wall-clock time, so there is no real risk of a seed aging out
// between rounds.
const tFail = time.Hour

func main() {
	stdlog := log.New(os.Stdout, "", 0)
	sink := logging.NewRecordingSink()
	net := transport.NewSimNet(0)
	cfg := config.Default()
	clk := clock.NewTickClock()

	addrs := make([]types.Address, numNodes)
	for i := 0; i < numNodes; i++ {
		addrs[i] = types.NewAddress(uint32(i+1), uint16(5001+i))
	}

	gossip := make(map[types.Address]*membership.GossipList, numNodes)
	for _, a := range addrs {
		g := membership.NewGossipList(a, tFail)
		for _, peer := range addrs {
			if peer != a {
				g.AddSeed(peer)
			}
		}
		gossip[a] = g
	}

	nodes := make(map[types.Address]*node.Node, numNodes)
	for _, a := range addrs {
		nodes[a] = node.New(a, cfg, gossip[a], net, sink)
		stdlog.Printf("[BOOT] node %s joined the ring", a)
	}

	// gossipRound lets every node's heartbeat age and exchanges views with
	// one random peer each, the same convergence mechanism GossipList was
	// built for — driven here instead of over a real network.
	gossipRound := func() {
		for _, a := range addrs {
			gossip[a].Tick()
		}
		for _, a := range addrs {
			peer, ok := gossip[a].RandomPeer()
			if !ok {
				continue
			}
			gossip[a].Merge(gossip[peer].Entries())
			gossip[peer].Merge(gossip[a].Entries())
		}
	}

	tickAll := func(now int64) {
		gossipRound()
		for _, a := range addrs {
			nodes[a].Tick(now)
		}
	}

	fmt.Printf("\n[RING] ring_size=%d replication_factor=%d quorum=%d nodes=%d\n\n",
		cfg.RingSize, cfg.ReplicationFactor, cfg.Quorum, numNodes)

	self := addrs[0]
	c := client.New(nodes[self], sink)
	c.Advance = tickAll

	keys := []string{"user:alice", "user:bob", "order:1001"}
	vals := []string{"Alice Smith", "Bob Jones", "Widget x3"}

	clk.Set(1)
	for i, key := range keys {
		ok, err := c.Create(clk.Now(), key, vals[i], 5)
		clk.Set(clk.Now() + 5)
		if err != nil {
			fmt.Printf("[CREATE] key=%q ERROR: %v\n", key, err)
			continue
		}
		fmt.Printf("[CREATE] key=%q value=%q success=%v\n", key, vals[i], ok)
	}
	fmt.Println()

	for _, key := range keys {
		value, ok, err := c.Read(clk.Now(), key, 5)
		clk.Set(clk.Now() + 5)
		if err != nil {
			fmt.Printf("[READ] key=%q ERROR: %v\n", key, err)
			continue
		}
		fmt.Printf("[READ] key=%q value=%q success=%v\n", key, value, ok)
	}
	fmt.Println()

	fmt.Println("[UPDATE] read-modify-write on user:alice")
	ok, err := c.Update(clk.Now(), "user:alice", "Alice Updated", 5)
	clk.Set(clk.Now() + 5)
	if err != nil {
		fmt.Printf("[UPDATE] ERROR: %v\n", err)
	} else {
		fmt.Printf("[UPDATE] success=%v\n", ok)
	}

	value, _, _ := c.Read(clk.Now(), "user:alice", 5)
	clk.Set(clk.Now() + 5)
	fmt.Printf("[READ] key=%q value=%q\n", "user:alice", value)
	fmt.Println()

	_, ok, err = c.Read(clk.Now(), "nonexistent", 5)
	fmt.Printf("[READ] key=%q success=%v err=%v\n", "nonexistent", ok, err)
}
