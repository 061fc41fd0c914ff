// Package txn tracks per-coordinator state for outstanding client
// operations, driving quorum, timeout, and the final user-visible outcome.
package txn

import (
	"sync"

	"github.com/pixperk/dynamokv/types"
)

// Record is one outstanding client operation.
type Record struct {
	Kind    types.MessageKind
	Created int64
	Success int
	Failure int
	Key     string
	Value   string // empty for READ/DELETE issue; accumulates last-seen read value
}

// Table is the set of outstanding transactions, keyed by transaction id.
// Quorum is fixed at 2-of-3, matching a fixed replication factor of 3.
type Table struct {
	mu      sync.Mutex
	records map[int64]*Record
}

func New() *Table {
	return &Table{records: make(map[int64]*Record)}
}

// Register creates a fresh transaction record with success=failure=0.
func (t *Table) Register(txnID int64, kind types.MessageKind, now int64, key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[txnID] = &Record{Kind: kind, Created: now, Key: key, Value: value}
}

// Outcome is what happened to a transaction record as a result of a reply
// or a timeout sweep: whether it resolved this call, whether it succeeded,
// and the record's state at resolution (for logging).
type Outcome struct {
	Resolved bool
	Success  bool
	Record   Record
}

// OnReply handles a REPLY for CREATE/UPDATE/DELETE: look up the
// transaction; if absent, drop it (a late reply arriving after quorum
// already resolved the transaction). Otherwise increment success or
// failure, then evaluate quorum: success==2 resolves success, failure==2
// resolves failure. success+failure can never exceed 3 because the record
// is deleted the instant either reaches 2.
func (t *Table) OnReply(txnID int64, success bool) (Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[txnID]
	if !ok {
		return Outcome{}, false
	}
	if success {
		r.Success++
	} else {
		r.Failure++
	}
	return t.resolve(txnID, r)
}

// OnReadReply handles a READREPLY: a non-empty value counts as success and
// overwrites the record's stored value with the reply's value, so the
// eventually-logged value reflects the last successful replica; an empty
// value counts as failure.
func (t *Table) OnReadReply(txnID int64, value string) (Outcome, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.records[txnID]
	if !ok {
		return Outcome{}, false
	}
	if value != "" {
		r.Success++
		r.Value = value
	} else {
		r.Failure++
	}
	return t.resolve(txnID, r)
}

// resolve evaluates the 2-of-3 quorum rule and deletes the record the
// instant it fires, guaranteeing a third late reply finds nothing and so
// cannot alter the logged outcome. Caller must hold t.mu.
func (t *Table) resolve(txnID int64, r *Record) (Outcome, bool) {
	switch {
	case r.Success == 2:
		delete(t.records, txnID)
		return Outcome{Resolved: true, Success: true, Record: *r}, true
	case r.Failure == 2:
		delete(t.records, txnID)
		return Outcome{Resolved: true, Success: false, Record: *r}, true
	default:
		return Outcome{}, true
	}
}

// TimedOut is one transaction that aged out of TIME_OUT ticks, for the
// sweep's caller to log and discard.
type TimedOut struct {
	TxnID  int64
	Record Record
}

// SweepTimeouts removes every record older than timeout ticks and returns
// them for the caller to log as coordinator-side failures, across all four
// operation kinds.
func (t *Table) SweepTimeouts(now, timeout int64) []TimedOut {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []TimedOut
	for id, r := range t.records {
		if now-r.Created > timeout {
			out = append(out, TimedOut{TxnID: id, Record: *r})
			delete(t.records, id)
		}
	}
	return out
}

// Len reports the number of outstanding transactions (for tests/metrics).
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
