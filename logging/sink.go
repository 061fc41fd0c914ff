// Package logging records operation outcomes. Sink declares one method per
// (kind × success/failure) combination, each taking a coordinator/replica-
// side flag. Calls with no intrinsic value (READ failure, DELETE) omit the
// value parameter.
package logging

import (
	"log"

	"github.com/pixperk/dynamokv/types"
)

// Sink is the full logging contract. coordinator=true means "final outcome
// after quorum/timeout"; coordinator=false means "per-operation, replica
// side".
type Sink interface {
	LogCreateSuccess(addr types.Address, coordinator bool, txnID int64, key, value string)
	LogCreateFail(addr types.Address, coordinator bool, txnID int64, key, value string)
	LogReadSuccess(addr types.Address, coordinator bool, txnID int64, key, value string)
	LogReadFail(addr types.Address, coordinator bool, txnID int64, key string)
	LogUpdateSuccess(addr types.Address, coordinator bool, txnID int64, key, value string)
	LogUpdateFail(addr types.Address, coordinator bool, txnID int64, key, value string)
	LogDeleteSuccess(addr types.Address, coordinator bool, txnID int64, key string)
	LogDeleteFail(addr types.Address, coordinator bool, txnID int64, key string)
}

func side(coordinator bool) string {
	if coordinator {
		return "coord"
	}
	return "repl"
}

// StdSink wraps a stdlib *log.Logger and narrates every call as a single
// line.
type StdSink struct {
	L *log.Logger
}

func NewStdSink(l *log.Logger) *StdSink { return &StdSink{L: l} }

func (s *StdSink) LogCreateSuccess(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.L.Printf("[%s] CREATE success txn=%d node=%s key=%q value=%q", side(coordinator), txnID, addr, key, value)
}

func (s *StdSink) LogCreateFail(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.L.Printf("[%s] CREATE fail txn=%d node=%s key=%q value=%q", side(coordinator), txnID, addr, key, value)
}

func (s *StdSink) LogReadSuccess(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.L.Printf("[%s] READ success txn=%d node=%s key=%q value=%q", side(coordinator), txnID, addr, key, value)
}

func (s *StdSink) LogReadFail(addr types.Address, coordinator bool, txnID int64, key string) {
	s.L.Printf("[%s] READ fail txn=%d node=%s key=%q", side(coordinator), txnID, addr, key)
}

func (s *StdSink) LogUpdateSuccess(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.L.Printf("[%s] UPDATE success txn=%d node=%s key=%q value=%q", side(coordinator), txnID, addr, key, value)
}

func (s *StdSink) LogUpdateFail(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.L.Printf("[%s] UPDATE fail txn=%d node=%s key=%q value=%q", side(coordinator), txnID, addr, key, value)
}

func (s *StdSink) LogDeleteSuccess(addr types.Address, coordinator bool, txnID int64, key string) {
	s.L.Printf("[%s] DELETE success txn=%d node=%s key=%q", side(coordinator), txnID, addr, key)
}

func (s *StdSink) LogDeleteFail(addr types.Address, coordinator bool, txnID int64, key string) {
	s.L.Printf("[%s] DELETE fail txn=%d node=%s key=%q", side(coordinator), txnID, addr, key)
}

// Entry is one recorded call, used by RecordingSink for assertions.
type Entry struct {
	Kind        types.MessageKind // CREATE/READ/UPDATE/DELETE
	Success     bool
	Coordinator bool
	Addr        types.Address
	TxnID       int64
	Key         string
	Value       string
}

// RecordingSink collects every call in order, for table-driven test
// assertions.
type RecordingSink struct {
	Entries []Entry
}

func NewRecordingSink() *RecordingSink { return &RecordingSink{} }

func (s *RecordingSink) record(kind types.MessageKind, success, coordinator bool, addr types.Address, txnID int64, key, value string) {
	s.Entries = append(s.Entries, Entry{Kind: kind, Success: success, Coordinator: coordinator, Addr: addr, TxnID: txnID, Key: key, Value: value})
}

func (s *RecordingSink) LogCreateSuccess(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.record(types.CREATE, true, coordinator, addr, txnID, key, value)
}
func (s *RecordingSink) LogCreateFail(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.record(types.CREATE, false, coordinator, addr, txnID, key, value)
}
func (s *RecordingSink) LogReadSuccess(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.record(types.READ, true, coordinator, addr, txnID, key, value)
}
func (s *RecordingSink) LogReadFail(addr types.Address, coordinator bool, txnID int64, key string) {
	s.record(types.READ, false, coordinator, addr, txnID, key, "")
}
func (s *RecordingSink) LogUpdateSuccess(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.record(types.UPDATE, true, coordinator, addr, txnID, key, value)
}
func (s *RecordingSink) LogUpdateFail(addr types.Address, coordinator bool, txnID int64, key, value string) {
	s.record(types.UPDATE, false, coordinator, addr, txnID, key, value)
}
func (s *RecordingSink) LogDeleteSuccess(addr types.Address, coordinator bool, txnID int64, key string) {
	s.record(types.DELETE, true, coordinator, addr, txnID, key, "")
}
func (s *RecordingSink) LogDeleteFail(addr types.Address, coordinator bool, txnID int64, key string) {
	s.record(types.DELETE, false, coordinator, addr, txnID, key, "")
}

// CoordinatorOutcomes returns every coordinator-side entry for a kind, in
// order.
func (s *RecordingSink) CoordinatorOutcomes(kind types.MessageKind) []Entry {
	var out []Entry
	for _, e := range s.Entries {
		if e.Kind == kind && e.Coordinator {
			out = append(out, e)
		}
	}
	return out
}
