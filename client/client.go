// Package client is a thin, synchronous wrapper for demos and tests: issue
// a coordinator call, then drive Tick until the logging sink records a
// resolution (or a tick budget is exhausted).
package client

import (
	"errors"

	"github.com/pixperk/dynamokv/logging"
	"github.com/pixperk/dynamokv/node"
	"github.com/pixperk/dynamokv/types"
)

// ErrNoOutcome is returned when the tick budget is exhausted before the
// sink records a coordinator-side resolution for the transaction.
var ErrNoOutcome = errors.New("client: no outcome within tick budget")

// Client issues coordinator calls against Node and blocks until the
// sink records a resolution. Advance drives one logical tick of the whole
// cluster the node lives in — for a single-node demo that's just
// Node.Tick, but in a multi-node cluster it must also tick every replica
// peer, or replies never arrive. Defaults to ticking Node alone when nil.
type Client struct {
	Node    *node.Node
	Sink    *logging.RecordingSink
	Advance func(now int64)
}

func New(n *node.Node, sink *logging.RecordingSink) *Client {
	return &Client{Node: n, Sink: sink}
}

// waitFor advances the cluster one tick at a time, starting at startTick,
// until the sink has logged a coordinator-side outcome for txnID or
// maxTicks elapse.
func (c *Client) waitFor(kind types.MessageKind, txnID int64, startTick int64, maxTicks int) (logging.Entry, error) {
	advance := c.Advance
	if advance == nil {
		advance = c.Node.Tick
	}
	for i := 0; i < maxTicks; i++ {
		now := startTick + int64(i)
		advance(now)
		for _, e := range c.Sink.CoordinatorOutcomes(kind) {
			if e.TxnID == txnID {
				return e, nil
			}
		}
	}
	return logging.Entry{}, ErrNoOutcome
}

// Create issues a coordinator CREATE and blocks (by ticking) until it
// resolves. Returns the final entry's success flag.
func (c *Client) Create(now int64, key, value string, maxTicks int) (bool, error) {
	txnID, ok := c.Node.Coordinator.Create(now, key, value)
	if !ok {
		return false, errors.New("client: fewer than 3 replicas known")
	}
	e, err := c.waitFor(types.CREATE, txnID, now, maxTicks)
	if err != nil {
		return false, err
	}
	return e.Success, nil
}

// Read issues a coordinator READ and blocks until it resolves. Returns the
// value seen (empty on failure) and the success flag.
func (c *Client) Read(now int64, key string, maxTicks int) (string, bool, error) {
	txnID, ok := c.Node.Coordinator.Read(now, key)
	if !ok {
		return "", false, errors.New("client: fewer than 3 replicas known")
	}
	e, err := c.waitFor(types.READ, txnID, now, maxTicks)
	if err != nil {
		return "", false, err
	}
	return e.Value, e.Success, nil
}

// Update issues a coordinator UPDATE and blocks until it resolves.
func (c *Client) Update(now int64, key, value string, maxTicks int) (bool, error) {
	txnID, ok := c.Node.Coordinator.Update(now, key, value)
	if !ok {
		return false, errors.New("client: fewer than 3 replicas known")
	}
	e, err := c.waitFor(types.UPDATE, txnID, now, maxTicks)
	if err != nil {
		return false, err
	}
	return e.Success, nil
}

// Delete issues a coordinator DELETE and blocks until it resolves.
func (c *Client) Delete(now int64, key string, maxTicks int) (bool, error) {
	txnID, ok := c.Node.Coordinator.Delete(now, key)
	if !ok {
		return false, errors.New("client: fewer than 3 replicas known")
	}
	e, err := c.waitFor(types.DELETE, txnID, now, maxTicks)
	if err != nil {
		return false, err
	}
	return e.Success, nil
}
