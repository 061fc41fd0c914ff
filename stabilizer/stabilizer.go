// Package stabilizer holds the two mechanisms that repair a replica set
// after membership churn: push-based stabilization, which fires the
// instant the ring's size changes, and pull-based anti-entropy, a
// periodic merkle-diff sync between two stores. Neither path touches the
// transaction table or the logging sink; both are silent background
// repair.
package stabilizer

import (
	"github.com/pixperk/dynamokv/merkle"
	"github.com/pixperk/dynamokv/ring"
	"github.com/pixperk/dynamokv/store"
	"github.com/pixperk/dynamokv/transport"
	"github.com/pixperk/dynamokv/types"
	"github.com/pixperk/dynamokv/version"
	"github.com/pixperk/dynamokv/wire"
)

// target pairs a peer with the replica role tag it should be told it now
// holds.
type target struct {
	addr types.Address
	role types.ReplicaRole
}

// targetsFor returns the two push targets for an entry currently held
// under role: a primary pushes to both of its immediate successors, a
// secondary to one successor and one predecessor, and a tertiary to both of
// its immediate predecessors, keeping the replica set self-healing without needing to know which
// specific peer left or joined.
func targetsFor(role types.ReplicaRole, n ring.Neighbors) []target {
	switch role {
	case types.PRIMARY:
		return []target{{n.HasMyReplicas[0], types.SECONDARY}, {n.HasMyReplicas[1], types.TERTIARY}}
	case types.SECONDARY:
		return []target{{n.HasMyReplicas[0], types.TERTIARY}, {n.HaveReplicasOf[0], types.PRIMARY}}
	case types.TERTIARY:
		return []target{{n.HaveReplicasOf[1], types.PRIMARY}, {n.HaveReplicasOf[0], types.SECONDARY}}
	default:
		return nil
	}
}

// Stabilize runs the push-based repair pass. Called only when the ring's
// size has just changed and the local store is non-empty. For every key
// this node currently holds, it emits two background CREATEs (sentinel
// transaction id) to its neighbors, tagged with the role the receiver
// should record for that key. Sends are unconditional and
// duplicate-tolerant: a receiver that already holds the key simply
// rejects the redundant create.
func Stabilize(self types.Address, r *ring.Ring, s *store.LocalStore, tr transport.Transport) {
	neighbors := r.FindNeighbors()
	if !neighbors.Found {
		return
	}
	for key, entry := range s.Snapshot() {
		for _, t := range targetsFor(entry.Role, neighbors) {
			tr.Send(self, t.addr, wire.Encode(wire.Message{
				TxnID:   types.StabilizationTxnID,
				From:    self,
				Kind:    types.CREATE,
				Key:     key,
				Value:   entry.Value,
				Replica: t.role,
			}))
		}
	}
}

// AntiEntropy runs the pull-based merkle-diff repair pass. It operates
// directly on a peer's store rather than round-tripping over a transport:
// within a single simulated cluster every node's store is reachable by
// reference, so there's no need for a dedicated sync wire message.
type AntiEntropy struct {
	Self types.Address
}

// Sync diffs local against peer via their merkle trees and repairs every
// divergent key by timestamp: whichever side's entry is newer is copied to
// the other (version.Winner). Returns the keys repaired, for observability
// only — it never touches the transaction table or the logging sink.
func (a AntiEntropy) Sync(local, peer *store.LocalStore) []string {
	localSnap := local.Snapshot()
	peerSnap := peer.Snapshot()

	diverged := merkle.Diverged(merkle.BuildFromStore(localSnap), merkle.BuildFromStore(peerSnap))
	repaired := make([]string, 0, len(diverged))
	for _, key := range diverged {
		lEntry, lOK := localSnap[key]
		pEntry, pOK := peerSnap[key]

		switch {
		case lOK && !pOK:
			peer.Put(key, lEntry)
		case pOK && !lOK:
			local.Put(key, pEntry)
		case lOK && pOK:
			winner := version.Winner(lEntry, pEntry)
			local.Put(key, winner)
			peer.Put(key, winner)
		default:
			continue
		}
		repaired = append(repaired, key)
	}
	return repaired
}
