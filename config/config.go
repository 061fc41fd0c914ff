// Package config groups the cluster's tuning constants — ring modulus,
// transaction timeout, replication factor, quorum — into a single struct.
package config

import "github.com/pixperk/dynamokv/ring"

// Config holds the fixed tuning parameters for one cluster run. None of
// these are mutable at runtime.
type Config struct {
	RingSize          uint64
	Timeout           int64
	ReplicationFactor int
	Quorum            int
}

// Default returns the constants used throughout the test suite and the
// cmd/kvnode demo: a 64-slot ring, a 10-tick timeout, RF=3 with a 2-of-3
// quorum.
func Default() Config {
	return Config{
		RingSize:          64,
		Timeout:           10,
		ReplicationFactor: ring.ReplicationFactor,
		Quorum:            2,
	}
}
